package controllers

import (
	"strings"
	"time"
)

// ValidationErrors перечисляет все нарушенные поля запроса, а не только первое
type ValidationErrors struct {
	Fields map[string]string `json:"fields"`
}

// Error реализует интерфейс error
func (e *ValidationErrors) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for field, msg := range e.Fields {
		parts = append(parts, field+": "+msg)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationErrors) add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = message
}

func (e *ValidationErrors) orNil() *ValidationErrors {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

// Допустимые состояния предмета при возврате
var validConditions = map[string]bool{
	"excellent": true,
	"good":      true,
	"fair":      true,
	"poor":      true,
	"damaged":   true,
}

// Допустимые типы обслуживания
var validMaintenanceTypes = map[string]bool{
	"routine":     true,
	"repair":      true,
	"inspection":  true,
	"calibration": true,
}

// Допустимые приоритеты обслуживания
var validPriorities = map[string]bool{
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
}

// LookupRequest структура запроса поиска предмета по NFC метке
type LookupRequest struct {
	TagUID string `json:"tag_uid"`
}

// ValidatedLookup нормализованный запрос поиска
type ValidatedLookup struct {
	TagUID string
}

// ValidateLookupRequest проверяет запрос поиска по NFC метке.
// Валидаторы — чистые функции: не обращаются к базе и не видят арендатора.
func ValidateLookupRequest(req LookupRequest) (*ValidatedLookup, *ValidationErrors) {
	errs := &ValidationErrors{}

	tagUID := strings.TrimSpace(req.TagUID)
	if tagUID == "" {
		errs.add("tag_uid", "NFC метка обязательна")
	} else if len(tagUID) > 50 {
		errs.add("tag_uid", "NFC метка не должна превышать 50 символов")
	}

	if v := errs.orNil(); v != nil {
		return nil, v
	}
	return &ValidatedLookup{TagUID: tagUID}, nil
}

// AssignRequest структура запроса выдачи предмета
type AssignRequest struct {
	OperatorID         uint   `json:"operator_id"`
	AssignedBy         uint   `json:"assigned_by"`
	Notes              string `json:"notes"`
	ExpectedReturnDate string `json:"expected_return_date"`
}

// ValidatedAssign нормализованный запрос выдачи
type ValidatedAssign struct {
	OperatorID         uint
	AssignedBy         uint
	Notes              string
	ExpectedReturnDate *time.Time
}

// ValidateAssignRequest проверяет запрос выдачи предмета
func ValidateAssignRequest(req AssignRequest) (*ValidatedAssign, *ValidationErrors) {
	errs := &ValidationErrors{}

	if req.OperatorID == 0 {
		errs.add("operator_id", "Идентификатор получателя обязателен")
	}
	if req.AssignedBy == 0 {
		errs.add("assigned_by", "Идентификатор выдавшего обязателен")
	}
	if len(req.Notes) > 500 {
		errs.add("notes", "Заметки не должны превышать 500 символов")
	}

	var expectedReturn *time.Time
	if req.ExpectedReturnDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ExpectedReturnDate)
		if err != nil {
			errs.add("expected_return_date", "Дата возврата должна быть в формате ISO 8601")
		} else {
			expectedReturn = &parsed
		}
	}

	if v := errs.orNil(); v != nil {
		return nil, v
	}
	return &ValidatedAssign{
		OperatorID:         req.OperatorID,
		AssignedBy:         req.AssignedBy,
		Notes:              req.Notes,
		ExpectedReturnDate: expectedReturn,
	}, nil
}

// CheckRequest структура запроса возврата или самостоятельной выдачи
type CheckRequest struct {
	OperatorID uint   `json:"operator_id"`
	Location   string `json:"location"`
	Notes      string `json:"notes"`
	Condition  string `json:"condition"`
}

// ValidatedCheck нормализованный запрос возврата/выдачи
type ValidatedCheck struct {
	OperatorID uint
	Location   string
	Notes      string
	Condition  string
}

// ValidateCheckRequest проверяет запрос возврата или самостоятельной выдачи
func ValidateCheckRequest(req CheckRequest) (*ValidatedCheck, *ValidationErrors) {
	errs := &ValidationErrors{}

	if req.OperatorID == 0 {
		errs.add("operator_id", "Идентификатор оператора обязателен")
	}
	if len(req.Location) > 100 {
		errs.add("location", "Местоположение не должно превышать 100 символов")
	}
	if len(req.Notes) > 500 {
		errs.add("notes", "Заметки не должны превышать 500 символов")
	}
	if req.Condition != "" && !validConditions[req.Condition] {
		errs.add("condition", "Состояние должно быть одним из: excellent, good, fair, poor, damaged")
	}

	if v := errs.orNil(); v != nil {
		return nil, v
	}
	return &ValidatedCheck{
		OperatorID: req.OperatorID,
		Location:   req.Location,
		Notes:      req.Notes,
		Condition:  req.Condition,
	}, nil
}

// MaintenanceRequest структура запроса постановки на обслуживание
type MaintenanceRequest struct {
	MaintenanceType     string   `json:"maintenance_type"`
	PerformedBy         uint     `json:"performed_by"`
	Description         string   `json:"description"`
	Priority            string   `json:"priority"`
	Cost                *float64 `json:"cost"`
	ScheduledDate       string   `json:"scheduled_date"`
	NextMaintenanceDate string   `json:"next_maintenance_date"`
}

// ValidatedMaintenance нормализованный запрос обслуживания
type ValidatedMaintenance struct {
	MaintenanceType     string
	PerformedBy         uint
	Description         string
	Priority            string
	Cost                *float64
	ScheduledDate       *time.Time
	NextMaintenanceDate *time.Time
}

// ValidateMaintenanceRequest проверяет запрос постановки на обслуживание
func ValidateMaintenanceRequest(req MaintenanceRequest) (*ValidatedMaintenance, *ValidationErrors) {
	errs := &ValidationErrors{}

	if req.MaintenanceType == "" {
		errs.add("maintenance_type", "Тип обслуживания обязателен")
	} else if !validMaintenanceTypes[req.MaintenanceType] {
		errs.add("maintenance_type", "Тип должен быть одним из: routine, repair, inspection, calibration")
	}
	if req.PerformedBy == 0 {
		errs.add("performed_by", "Идентификатор исполнителя обязателен")
	}
	if req.Description == "" {
		errs.add("description", "Описание обязательно")
	} else if len(req.Description) > 1000 {
		errs.add("description", "Описание не должно превышать 1000 символов")
	}
	if req.Priority != "" && !validPriorities[req.Priority] {
		errs.add("priority", "Приоритет должен быть одним из: low, medium, high, critical")
	}
	if req.Cost != nil && *req.Cost < 0 {
		errs.add("cost", "Стоимость не может быть отрицательной")
	}

	var scheduledDate, nextMaintenanceDate *time.Time
	if req.ScheduledDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.ScheduledDate)
		if err != nil {
			errs.add("scheduled_date", "Дата обслуживания должна быть в формате ISO 8601")
		} else {
			scheduledDate = &parsed
		}
	}
	if req.NextMaintenanceDate != "" {
		parsed, err := time.Parse(time.RFC3339, req.NextMaintenanceDate)
		if err != nil {
			errs.add("next_maintenance_date", "Дата следующего обслуживания должна быть в формате ISO 8601")
		} else {
			nextMaintenanceDate = &parsed
		}
	}

	if v := errs.orNil(); v != nil {
		return nil, v
	}
	return &ValidatedMaintenance{
		MaintenanceType:     req.MaintenanceType,
		PerformedBy:         req.PerformedBy,
		Description:         req.Description,
		Priority:            req.Priority,
		Cost:                req.Cost,
		ScheduledDate:       scheduledDate,
		NextMaintenanceDate: nextMaintenanceDate,
	}, nil
}
