package services

import (
	"errors"
	"time"

	"tagtrack-backend/models"

	"gorm.io/gorm"
)

// Ошибки жизненного цикла предмета
var (
	// ErrItemNotFound возвращается, когда предмет не найден в рамках арендатора
	ErrItemNotFound = errors.New("item not found")
	// ErrMaintenanceNotFound возвращается, когда запись обслуживания не найдена
	ErrMaintenanceNotFound = errors.New("maintenance record not found")
	// ErrLifecycleConflict возвращается, когда запрошенный переход недопустим
	// из текущего статуса или конкурирующий переход выиграл гонку
	ErrLifecycleConflict = errors.New("lifecycle conflict")
)

// AssignParams параметры выдачи предмета
type AssignParams struct {
	AssignedTo         uint
	AssignedBy         uint
	Notes              string
	ExpectedReturnDate *time.Time
}

// CheckInParams параметры возврата предмета
type CheckInParams struct {
	Condition string
	Location  string
	Notes     string
}

// MaintenanceParams параметры постановки на обслуживание
type MaintenanceParams struct {
	PerformedBy         uint
	Type                string
	Priority            string
	Description         string
	Cost                *float64
	ScheduledDate       *time.Time
	NextMaintenanceDate *time.Time
}

// LifecycleService управляет жизненным циклом предметов.
// Это единственная точка изменения Item.Status: каждый переход выполняется
// в одной транзакции (статус, связанная запись, журнал), а конкурирующие
// переходы по одному предмету сериализуются через compare-and-swap по
// прочитанному ранее статусу.
type LifecycleService struct {
	db *gorm.DB
}

// NewLifecycleService создает новый сервис жизненного цикла
func NewLifecycleService(db *gorm.DB) *LifecycleService {
	return &LifecycleService{db: db}
}

// casItemStatus атомарно меняет статус предмета при условии, что он не
// изменился с момента чтения. Ноль затронутых строк означает, что
// конкурирующий переход выиграл гонку.
func (s *LifecycleService) casItemStatus(tx *gorm.DB, item *models.Item, newStatus string, assignedTo *uint) error {
	res := tx.Model(&models.Item{}).
		Where("id = ? AND tenant_id = ? AND status = ?", item.ID, item.TenantID, item.Status).
		Updates(map[string]interface{}{
			"status":              newStatus,
			"current_assigned_to": assignedTo,
			"updated_at":          time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrLifecycleConflict
	}
	return nil
}

// appendLog добавляет запись в журнал действий в рамках транзакции
func (s *LifecycleService) appendLog(tx *gorm.DB, item *models.Item, actionType string, actorID uint, newState string) error {
	entry := models.ActionLog{
		TenantID:      item.TenantID,
		ItemID:        item.ID,
		ActionType:    actionType,
		UserID:        actorID,
		PreviousState: item.Status,
		NewState:      newState,
	}
	return tx.Create(&entry).Error
}

// findItem загружает предмет строго в рамках арендатора
func (s *LifecycleService) findItem(tx *gorm.DB, tenantID, itemID uint) (*models.Item, error) {
	var item models.Item
	err := tx.Where("id = ? AND tenant_id = ?", itemID, tenantID).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// findOpenAssignment возвращает открытую выдачу предмета, если она есть
func (s *LifecycleService) findOpenAssignment(tx *gorm.DB, tenantID, itemID uint) (*models.Assignment, error) {
	var assignment models.Assignment
	err := tx.Where("item_id = ? AND tenant_id = ? AND status IN ?",
		itemID, tenantID, []string{models.AssignmentStatusActive, models.AssignmentStatusOverdue}).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &assignment, nil
}

// Assign выдает предмет пользователю: available -> assigned.
// Создает активную выдачу, устанавливает CurrentAssignedTo и пишет журнал.
func (s *LifecycleService) Assign(tenantID, itemID, actorID uint, params AssignParams) (*models.Assignment, error) {
	var assignment *models.Assignment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.findItem(tx, tenantID, itemID)
		if err != nil {
			return err
		}

		// Выдать можно только доступный предмет
		if item.Status != models.ItemStatusAvailable {
			return ErrLifecycleConflict
		}

		assignedTo := params.AssignedTo
		if err := s.casItemStatus(tx, item, models.ItemStatusAssigned, &assignedTo); err != nil {
			return err
		}

		assignment = &models.Assignment{
			TenantID:           tenantID,
			ItemID:             item.ID,
			AssignedTo:         params.AssignedTo,
			AssignedBy:         params.AssignedBy,
			ExpectedReturnDate: params.ExpectedReturnDate,
			Status:             models.AssignmentStatusActive,
			Notes:              params.Notes,
		}
		if err := tx.Create(assignment).Error; err != nil {
			return err
		}

		return s.appendLog(tx, item, models.ActionTypeAssigned, actorID, models.ItemStatusAssigned)
	})

	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// CheckIn принимает предмет обратно: assigned -> available.
// Закрывает открытую выдачу, очищает CurrentAssignedTo и пишет журнал.
func (s *LifecycleService) CheckIn(tenantID, itemID, actorID uint, params CheckInParams) (*models.Assignment, error) {
	var assignment *models.Assignment

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.findItem(tx, tenantID, itemID)
		if err != nil {
			return err
		}

		if item.Status != models.ItemStatusAssigned {
			return ErrLifecycleConflict
		}

		assignment, err = s.findOpenAssignment(tx, tenantID, item.ID)
		if err != nil {
			return err
		}
		// Предмет числится выданным, но открытой выдачи нет —
		// рассогласование данных, переход запрещен
		if assignment == nil {
			return ErrLifecycleConflict
		}

		if err := s.casItemStatus(tx, item, models.ItemStatusAvailable, nil); err != nil {
			return err
		}

		now := time.Now()
		assignment.Status = models.AssignmentStatusReturned
		assignment.ActualReturnDate = &now
		assignment.ReturnCondition = params.Condition
		assignment.ReturnLocation = params.Location
		assignment.ReturnNotes = params.Notes
		if err := tx.Save(assignment).Error; err != nil {
			return err
		}

		return s.appendLog(tx, item, models.ActionTypeCheckedIn, actorID, models.ItemStatusAvailable)
	})

	if err != nil {
		return nil, err
	}
	return assignment, nil
}

// ScheduleMaintenance ставит предмет на обслуживание:
// available|assigned -> maintenance. Открытая выдача при этом не закрывается
// ("выдан, но выведен из эксплуатации"), но CurrentAssignedTo очищается,
// пока предмет находится на обслуживании.
func (s *LifecycleService) ScheduleMaintenance(tenantID, itemID, actorID uint, params MaintenanceParams) (*models.MaintenanceRecord, error) {
	var record *models.MaintenanceRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.findItem(tx, tenantID, itemID)
		if err != nil {
			return err
		}

		if item.Status != models.ItemStatusAvailable && item.Status != models.ItemStatusAssigned {
			return ErrLifecycleConflict
		}

		// У предмета может быть не больше одной открытой записи обслуживания
		var openCount int64
		if err := tx.Model(&models.MaintenanceRecord{}).
			Where("item_id = ? AND tenant_id = ? AND status IN ?",
				item.ID, tenantID, []string{models.MaintenanceStatusScheduled, models.MaintenanceStatusInProgress}).
			Count(&openCount).Error; err != nil {
			return err
		}
		if openCount > 0 {
			return ErrLifecycleConflict
		}

		if err := s.casItemStatus(tx, item, models.ItemStatusMaintenance, nil); err != nil {
			return err
		}

		// Без запланированной даты работа считается начатой сразу
		status := models.MaintenanceStatusScheduled
		if params.ScheduledDate == nil {
			status = models.MaintenanceStatusInProgress
		}

		priority := params.Priority
		if priority == "" {
			priority = "medium"
		}

		record = &models.MaintenanceRecord{
			TenantID:            tenantID,
			ItemID:              item.ID,
			PerformedBy:         params.PerformedBy,
			Type:                params.Type,
			Priority:            priority,
			Status:              status,
			Description:         params.Description,
			Cost:                params.Cost,
			ScheduledDate:       params.ScheduledDate,
			NextMaintenanceDate: params.NextMaintenanceDate,
		}
		if err := tx.Create(record).Error; err != nil {
			return err
		}

		return s.appendLog(tx, item, models.ActionTypeMaintenanceScheduled, actorID, models.ItemStatusMaintenance)
	})

	if err != nil {
		return nil, err
	}
	return record, nil
}

// CompleteMaintenance завершает обслуживание: maintenance -> assigned, если
// у предмета осталась открытая выдача (CurrentAssignedTo восстанавливается),
// иначе maintenance -> available.
func (s *LifecycleService) CompleteMaintenance(tenantID, recordID, actorID uint, cost *float64) (*models.MaintenanceRecord, error) {
	return s.closeMaintenance(tenantID, recordID, actorID, cost, models.MaintenanceStatusCompleted, models.ActionTypeMaintenanceCompleted)
}

// CancelMaintenance отменяет обслуживание; предмет возвращается в оборот
// так же, как при завершении
func (s *LifecycleService) CancelMaintenance(tenantID, recordID, actorID uint) (*models.MaintenanceRecord, error) {
	return s.closeMaintenance(tenantID, recordID, actorID, nil, models.MaintenanceStatusCancelled, models.ActionTypeMaintenanceCancelled)
}

func (s *LifecycleService) closeMaintenance(tenantID, recordID, actorID uint, cost *float64, recordStatus, actionType string) (*models.MaintenanceRecord, error) {
	var record *models.MaintenanceRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var rec models.MaintenanceRecord
		err := tx.Where("id = ? AND tenant_id = ?", recordID, tenantID).First(&rec).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMaintenanceNotFound
			}
			return err
		}
		record = &rec

		// Завершить или отменить можно только открытую запись
		if !record.IsOpen() {
			return ErrLifecycleConflict
		}

		item, err := s.findItem(tx, tenantID, record.ItemID)
		if err != nil {
			return err
		}
		if item.Status != models.ItemStatusMaintenance {
			return ErrLifecycleConflict
		}

		// Если выдача осталась открытой, предмет возвращается к держателю
		assignment, err := s.findOpenAssignment(tx, tenantID, item.ID)
		if err != nil {
			return err
		}

		newStatus := models.ItemStatusAvailable
		var assignedTo *uint
		if assignment != nil {
			newStatus = models.ItemStatusAssigned
			assignedTo = &assignment.AssignedTo
		}

		if err := s.casItemStatus(tx, item, newStatus, assignedTo); err != nil {
			return err
		}

		now := time.Now()
		record.Status = recordStatus
		record.CompletedDate = &now
		if cost != nil {
			record.Cost = cost
		}
		if err := tx.Save(record).Error; err != nil {
			return err
		}

		return s.appendLog(tx, item, actionType, actorID, newStatus)
	})

	if err != nil {
		return nil, err
	}
	return record, nil
}

// Retire списывает предмет из любого нетерминального статуса.
// Открытая выдача закрывается, открытое обслуживание отменяется в той же
// транзакции: у списанного предмета не остается открытых записей.
// Списание необратимо.
func (s *LifecycleService) Retire(tenantID, itemID, actorID uint) (*models.Item, error) {
	var retired *models.Item

	err := s.db.Transaction(func(tx *gorm.DB) error {
		item, err := s.findItem(tx, tenantID, itemID)
		if err != nil {
			return err
		}

		if item.Status == models.ItemStatusRetired {
			return ErrLifecycleConflict
		}

		assignment, err := s.findOpenAssignment(tx, tenantID, item.ID)
		if err != nil {
			return err
		}
		if assignment != nil {
			now := time.Now()
			assignment.Status = models.AssignmentStatusReturned
			assignment.ActualReturnDate = &now
			if err := tx.Save(assignment).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.MaintenanceRecord{}).
			Where("item_id = ? AND tenant_id = ? AND status IN ?",
				item.ID, tenantID, []string{models.MaintenanceStatusScheduled, models.MaintenanceStatusInProgress}).
			Updates(map[string]interface{}{
				"status":     models.MaintenanceStatusCancelled,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		if err := s.casItemStatus(tx, item, models.ItemStatusRetired, nil); err != nil {
			return err
		}

		if err := s.appendLog(tx, item, models.ActionTypeRetired, actorID, models.ItemStatusRetired); err != nil {
			return err
		}

		item.Status = models.ItemStatusRetired
		item.CurrentAssignedTo = nil
		retired = item
		return nil
	})

	if err != nil {
		return nil, err
	}
	return retired, nil
}

// MarkOverdueAssignments помечает просроченные активные выдачи арендатора.
// Вызывается лениво при чтении списков, фоновых задач в системе нет.
func (s *LifecycleService) MarkOverdueAssignments(tenantID uint) error {
	return s.db.Model(&models.Assignment{}).
		Where("tenant_id = ? AND status = ? AND expected_return_date IS NOT NULL AND expected_return_date < ?",
			tenantID, models.AssignmentStatusActive, time.Now()).
		Updates(map[string]interface{}{
			"status":     models.AssignmentStatusOverdue,
			"updated_at": time.Now(),
		}).Error
}
