package main

import (
	"strings"
	"testing"

	"tagtrack-backend/controllers"

	"github.com/stretchr/testify/assert"
)

func TestValidateLookupRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        controllers.LookupRequest
		wantFields []string
	}{
		{
			name: "валидный запрос",
			req:  controllers.LookupRequest{TagUID: "04:A3:22:B9:11:80:01"},
		},
		{
			name:       "пустая метка",
			req:        controllers.LookupRequest{TagUID: ""},
			wantFields: []string{"tag_uid"},
		},
		{
			name:       "метка из пробелов",
			req:        controllers.LookupRequest{TagUID: "   "},
			wantFields: []string{"tag_uid"},
		},
		{
			name:       "слишком длинная метка",
			req:        controllers.LookupRequest{TagUID: strings.Repeat("a", 51)},
			wantFields: []string{"tag_uid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated, errs := controllers.ValidateLookupRequest(tt.req)
			assertValidation(t, errs, tt.wantFields)
			if len(tt.wantFields) == 0 {
				assert.NotNil(t, validated)
			}
		})
	}
}

func TestValidateLookupTrims(t *testing.T) {
	validated, errs := controllers.ValidateLookupRequest(controllers.LookupRequest{TagUID: "  04:AA:01  "})
	assert.Nil(t, errs)
	assert.Equal(t, "04:AA:01", validated.TagUID)
}

func TestValidateAssignRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        controllers.AssignRequest
		wantFields []string
	}{
		{
			name: "валидный запрос",
			req: controllers.AssignRequest{
				OperatorID:         5,
				AssignedBy:         1,
				Notes:              "Выдан на смену",
				ExpectedReturnDate: "2026-09-01T10:00:00Z",
			},
		},
		{
			name:       "без получателя и выдавшего",
			req:        controllers.AssignRequest{},
			wantFields: []string{"operator_id", "assigned_by"},
		},
		{
			name: "слишком длинные заметки",
			req: controllers.AssignRequest{
				OperatorID: 5,
				AssignedBy: 1,
				Notes:      strings.Repeat("x", 501),
			},
			wantFields: []string{"notes"},
		},
		{
			name: "неверный формат даты",
			req: controllers.AssignRequest{
				OperatorID:         5,
				AssignedBy:         1,
				ExpectedReturnDate: "01.09.2026",
			},
			wantFields: []string{"expected_return_date"},
		},
		{
			name: "все ошибки сразу",
			req: controllers.AssignRequest{
				Notes:              strings.Repeat("x", 501),
				ExpectedReturnDate: "вчера",
			},
			wantFields: []string{"operator_id", "assigned_by", "notes", "expected_return_date"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated, errs := controllers.ValidateAssignRequest(tt.req)
			assertValidation(t, errs, tt.wantFields)
			if len(tt.wantFields) == 0 {
				assert.NotNil(t, validated)
				assert.NotNil(t, validated.ExpectedReturnDate)
			}
		})
	}
}

func TestValidateCheckRequest(t *testing.T) {
	tests := []struct {
		name       string
		req        controllers.CheckRequest
		wantFields []string
	}{
		{
			name: "валидный запрос",
			req: controllers.CheckRequest{
				OperatorID: 5,
				Location:   "Склад 2",
				Condition:  "good",
			},
		},
		{
			name:       "без оператора",
			req:        controllers.CheckRequest{},
			wantFields: []string{"operator_id"},
		},
		{
			name: "неизвестное состояние",
			req: controllers.CheckRequest{
				OperatorID: 5,
				Condition:  "broken",
			},
			wantFields: []string{"condition"},
		},
		{
			name: "длинное местоположение и заметки",
			req: controllers.CheckRequest{
				OperatorID: 5,
				Location:   strings.Repeat("л", 101),
				Notes:      strings.Repeat("з", 501),
			},
			wantFields: []string{"location", "notes"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated, errs := controllers.ValidateCheckRequest(tt.req)
			assertValidation(t, errs, tt.wantFields)
			if len(tt.wantFields) == 0 {
				assert.NotNil(t, validated)
			}
		})
	}
}

func TestValidateMaintenanceRequest(t *testing.T) {
	negativeCost := -10.0
	validCost := 150.0

	tests := []struct {
		name       string
		req        controllers.MaintenanceRequest
		wantFields []string
	}{
		{
			name: "валидный запрос",
			req: controllers.MaintenanceRequest{
				MaintenanceType: "repair",
				PerformedBy:     3,
				Description:     "Замена патрона",
				Priority:        "high",
				Cost:            &validCost,
				ScheduledDate:   "2026-09-05T09:00:00Z",
			},
		},
		{
			name:       "пустой запрос",
			req:        controllers.MaintenanceRequest{},
			wantFields: []string{"maintenance_type", "performed_by", "description"},
		},
		{
			name: "неизвестный тип",
			req: controllers.MaintenanceRequest{
				MaintenanceType: "upgrade",
				PerformedBy:     3,
				Description:     "Описание",
			},
			wantFields: []string{"maintenance_type"},
		},
		{
			name: "неизвестный приоритет",
			req: controllers.MaintenanceRequest{
				MaintenanceType: "routine",
				PerformedBy:     3,
				Description:     "Описание",
				Priority:        "urgent",
			},
			wantFields: []string{"priority"},
		},
		{
			name: "отрицательная стоимость",
			req: controllers.MaintenanceRequest{
				MaintenanceType: "routine",
				PerformedBy:     3,
				Description:     "Описание",
				Cost:            &negativeCost,
			},
			wantFields: []string{"cost"},
		},
		{
			name: "неверные даты",
			req: controllers.MaintenanceRequest{
				MaintenanceType:     "routine",
				PerformedBy:         3,
				Description:         "Описание",
				ScheduledDate:       "завтра",
				NextMaintenanceDate: "через месяц",
			},
			wantFields: []string{"scheduled_date", "next_maintenance_date"},
		},
		{
			name: "слишком длинное описание",
			req: controllers.MaintenanceRequest{
				MaintenanceType: "routine",
				PerformedBy:     3,
				Description:     strings.Repeat("о", 1001),
			},
			wantFields: []string{"description"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			validated, errs := controllers.ValidateMaintenanceRequest(tt.req)
			assertValidation(t, errs, tt.wantFields)
			if len(tt.wantFields) == 0 {
				assert.NotNil(t, validated)
			}
		})
	}
}

// Валидаторы - чистые функции: повторный вызов дает тот же результат
func TestValidatorsIdempotent(t *testing.T) {
	req := controllers.AssignRequest{Notes: strings.Repeat("x", 501)}

	_, first := controllers.ValidateAssignRequest(req)
	_, second := controllers.ValidateAssignRequest(req)

	assert.NotNil(t, first)
	assert.NotNil(t, second)
	assert.Equal(t, first.Fields, second.Fields)
}

// assertValidation проверяет, что нарушены ровно ожидаемые поля
func assertValidation(t *testing.T, errs *controllers.ValidationErrors, wantFields []string) {
	t.Helper()

	if len(wantFields) == 0 {
		assert.Nil(t, errs)
		return
	}

	assert.NotNil(t, errs)
	assert.Len(t, errs.Fields, len(wantFields))
	for _, field := range wantFields {
		assert.Contains(t, errs.Fields, field)
	}
}
