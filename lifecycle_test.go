package main

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"tagtrack-backend/models"
	"tagtrack-backend/services"

	"github.com/stretchr/testify/assert"
)

func TestTransitionMatrix(t *testing.T) {
	statuses := []string{
		models.ItemStatusAvailable,
		models.ItemStatusAssigned,
		models.ItemStatusMaintenance,
		models.ItemStatusRetired,
	}

	// Допустимые переходы; retired - терминальный статус
	allowed := map[string]bool{
		"available->assigned":    true,
		"available->maintenance": true,
		"available->retired":     true,
		"assigned->available":    true,
		"assigned->maintenance":  true,
		"assigned->retired":      true,
		"maintenance->available": true,
		"maintenance->assigned":  true,
		"maintenance->retired":   true,
	}

	for _, from := range statuses {
		for _, to := range statuses {
			key := fmt.Sprintf("%s->%s", from, to)
			assert.Equal(t, allowed[key], models.CanTransition(from, to), key)
		}
	}
}

func TestAssignCheckInCycle(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	// Выдача: available -> assigned
	assignment, err := svc.Assign(tenant.ID, item.ID, admin.ID, services.AssignParams{
		AssignedTo: operator.ID,
		AssignedBy: admin.ID,
		Notes:      "Выдан на смену",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusActive, assignment.Status)

	var got models.Item
	db.First(&got, item.ID)
	assert.Equal(t, models.ItemStatusAssigned, got.Status)
	assert.NotNil(t, got.CurrentAssignedTo)
	assert.Equal(t, operator.ID, *got.CurrentAssignedTo)

	// Повторная выдача выданного предмета запрещена
	_, err = svc.Assign(tenant.ID, item.ID, admin.ID, services.AssignParams{
		AssignedTo: admin.ID,
		AssignedBy: admin.ID,
	})
	assert.ErrorIs(t, err, services.ErrLifecycleConflict)

	// Возврат: assigned -> available
	returned, err := svc.CheckIn(tenant.ID, item.ID, operator.ID, services.CheckInParams{
		Condition: "good",
		Location:  "Склад 2",
	})
	assert.NoError(t, err)
	assert.Equal(t, models.AssignmentStatusReturned, returned.Status)
	assert.NotNil(t, returned.ActualReturnDate)
	assert.Equal(t, "good", returned.ReturnCondition)

	db.First(&got, item.ID)
	assert.Equal(t, models.ItemStatusAvailable, got.Status)
	assert.Nil(t, got.CurrentAssignedTo)

	// Возврат доступного предмета запрещен
	_, err = svc.CheckIn(tenant.ID, item.ID, operator.ID, services.CheckInParams{})
	assert.ErrorIs(t, err, services.ErrLifecycleConflict)

	// Журнал содержит оба перехода с корректными статусами
	var logs []models.ActionLog
	db.Where("item_id = ?", item.ID).Order("id").Find(&logs)
	assert.Len(t, logs, 2)
	assert.Equal(t, models.ActionTypeAssigned, logs[0].ActionType)
	assert.Equal(t, models.ItemStatusAvailable, logs[0].PreviousState)
	assert.Equal(t, models.ItemStatusAssigned, logs[0].NewState)
	assert.Equal(t, models.ActionTypeCheckedIn, logs[1].ActionType)
	assert.Equal(t, models.ItemStatusAssigned, logs[1].PreviousState)
	assert.Equal(t, models.ItemStatusAvailable, logs[1].NewState)
}

func TestAssignUnknownItem(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)

	_, err := svc.Assign(tenant.ID, 999, admin.ID, services.AssignParams{
		AssignedTo: admin.ID,
		AssignedBy: admin.ID,
	})
	assert.ErrorIs(t, err, services.ErrItemNotFound)
}

// Два конкурирующих запроса на выдачу одного предмета: побеждает ровно один
func TestConcurrentAssign(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	first := createTestUser(db, tenant.ID, "first@acme.com", models.RoleOperator)
	second := createTestUser(db, tenant.ID, "second@acme.com", models.RoleOperator)
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	var wg sync.WaitGroup
	results := make([]error, 2)

	for i, operator := range []*models.User{first, second} {
		wg.Add(1)
		go func(i int, operatorID uint) {
			defer wg.Done()
			_, results[i] = svc.Assign(tenant.ID, item.ID, admin.ID, services.AssignParams{
				AssignedTo: operatorID,
				AssignedBy: admin.ID,
			})
		}(i, operator.ID)
	}
	wg.Wait()

	winners := 0
	for _, err := range results {
		if err == nil {
			winners++
		} else {
			assert.ErrorIs(t, err, services.ErrLifecycleConflict)
		}
	}
	assert.Equal(t, 1, winners)

	// Создана ровно одна выдача и одна запись журнала
	var count int64
	db.Model(&models.Assignment{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.ActionLog{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

// Неуспешный переход не оставляет следов: ни записи, ни журнала
func TestFailedTransitionLeavesNoTrace(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	// Списываем предмет, затем пытаемся выдать
	_, err := svc.Retire(tenant.ID, item.ID, admin.ID)
	assert.NoError(t, err)

	_, err = svc.Assign(tenant.ID, item.ID, admin.ID, services.AssignParams{
		AssignedTo: admin.ID,
		AssignedBy: admin.ID,
	})
	assert.ErrorIs(t, err, services.ErrLifecycleConflict)

	var count int64
	db.Model(&models.Assignment{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	// В журнале только списание
	db.Model(&models.ActionLog{}).Where("item_id = ?", item.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestRetireTerminal(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	retired, err := svc.Retire(tenant.ID, item.ID, admin.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ItemStatusRetired, retired.Status)

	// Повторное списание запрещено
	_, err = svc.Retire(tenant.ID, item.ID, admin.ID)
	assert.ErrorIs(t, err, services.ErrLifecycleConflict)

	// Обслуживание списанного предмета запрещено
	_, err = svc.ScheduleMaintenance(tenant.ID, item.ID, admin.ID, services.MaintenanceParams{
		PerformedBy: admin.ID,
		Type:        models.MaintenanceTypeRoutine,
		Description: "Проверка",
	})
	assert.ErrorIs(t, err, services.ErrLifecycleConflict)
}

func TestMarkOverdueAssignments(t *testing.T) {
	db := setupTestDB()
	svc := services.NewLifecycleService(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)

	overdueItem := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")
	onTimeItem := createTestItem(db, tenant.ID, "Ноутбук", "04:AA:02")

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(24 * time.Hour)

	_, err := svc.Assign(tenant.ID, overdueItem.ID, admin.ID, services.AssignParams{
		AssignedTo:         operator.ID,
		AssignedBy:         admin.ID,
		ExpectedReturnDate: &past,
	})
	assert.NoError(t, err)

	_, err = svc.Assign(tenant.ID, onTimeItem.ID, admin.ID, services.AssignParams{
		AssignedTo:         operator.ID,
		AssignedBy:         admin.ID,
		ExpectedReturnDate: &future,
	})
	assert.NoError(t, err)

	assert.NoError(t, svc.MarkOverdueAssignments(tenant.ID))

	var assignments []models.Assignment
	db.Where("tenant_id = ?", tenant.ID).Order("item_id").Find(&assignments)
	assert.Len(t, assignments, 2)
	assert.Equal(t, models.AssignmentStatusOverdue, assignments[0].Status)
	assert.Equal(t, models.AssignmentStatusActive, assignments[1].Status)

	// Просроченную выдачу по-прежнему можно закрыть возвратом
	_, err = svc.CheckIn(tenant.ID, overdueItem.ID, operator.ID, services.CheckInParams{Condition: "fair"})
	assert.NoError(t, err)
}
