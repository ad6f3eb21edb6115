package main

import (
	"fmt"
	"net/http"
	"testing"

	"tagtrack-backend/models"

	"github.com/stretchr/testify/assert"
)

func TestCreateItem(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	token := tokenFor(operator)

	// Создание с NFC меткой
	resp, err := app.Test(jsonRequest("POST", "/items", map[string]interface{}{
		"name":     "Дрель",
		"category": "tools",
		"nfc_tag":  "04:AA:01",
	}, token))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	body := decodeBody(resp)
	item := body["item"].(map[string]interface{})
	assert.Equal(t, models.ItemStatusAvailable, item["status"])

	// Повторная NFC метка запрещена
	resp, err = app.Test(jsonRequest("POST", "/items", map[string]interface{}{
		"name":    "Вторая дрель",
		"nfc_tag": "04:AA:01",
	}, token))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Без названия запрос отклоняется
	resp, err = app.Test(jsonRequest("POST", "/items", map[string]interface{}{
		"category": "tools",
	}, token))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetItemsFilters(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	viewer := createTestUser(db, tenant.ID, "viewer@acme.com", models.RoleViewer)
	token := tokenFor(viewer)

	createTestItem(db, tenant.ID, "Дрель", "04:AA:01")
	createTestItem(db, tenant.ID, "Шуруповерт", "04:AA:02")
	retired := createTestItem(db, tenant.ID, "Старая дрель", "04:AA:03")
	db.Model(retired).Update("status", models.ItemStatusRetired)

	resp, err := app.Test(jsonRequest("GET", "/items?status=available", nil, token))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), decodeBody(resp)["total"])

	resp, err = app.Test(jsonRequest("GET", "/items?status=retired", nil, token))
	assert.NoError(t, err)
	assert.Equal(t, float64(1), decodeBody(resp)["total"])

	resp, err = app.Test(jsonRequest("GET", "/items?limit=1", nil, token))
	assert.NoError(t, err)
	body := decodeBody(resp)
	assert.Equal(t, float64(3), body["total"])
	assert.Len(t, body["items"], 1)
}

func TestLookupValidation(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	viewer := createTestUser(db, tenant.ID, "viewer@acme.com", models.RoleViewer)

	// Пустая метка - 422 со списком нарушенных полей
	resp, err := app.Test(jsonRequest("POST", "/items/lookup", map[string]interface{}{
		"tag_uid": "",
	}, tokenFor(viewer)))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	body := decodeBody(resp)
	assert.Equal(t, "validation_failed", body["code"])
	fields := body["fields"].(map[string]interface{})
	assert.Contains(t, fields, "tag_uid")
}

// Полный цикл через HTTP: выдача, возврат, обслуживание, списание
func TestItemLifecycleOverHTTP(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	adminToken := tokenFor(admin)
	operatorToken := tokenFor(operator)

	// Выдача
	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/assign", item.ID), map[string]interface{}{
		"operator_id": operator.ID,
		"assigned_by": admin.ID,
	}, adminToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Повторная выдача - конфликт жизненного цикла, не ошибка валидации
	resp, err = app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/assign", item.ID), map[string]interface{}{
		"operator_id": admin.ID,
		"assigned_by": admin.ID,
	}, adminToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "lifecycle_conflict", decodeBody(resp)["code"])

	// Возврат
	resp, err = app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/checkin", item.ID), map[string]interface{}{
		"operator_id": operator.ID,
		"condition":   "good",
		"location":    "Склад 2",
	}, operatorToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Обслуживание
	resp, err = app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/maintenance", item.ID), map[string]interface{}{
		"maintenance_type": "repair",
		"performed_by":     admin.ID,
		"description":      "Замена патрона",
	}, operatorToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	recordID := decodeBody(resp)["record"].(map[string]interface{})["id"].(float64)

	// Завершение обслуживания (только администратор)
	resp, err = app.Test(jsonRequest("PUT", fmt.Sprintf("/maintenance/%.0f/complete", recordID), map[string]interface{}{
		"cost": 250.0,
	}, adminToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Списание (только администратор)
	resp, err = app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/retire", item.ID), nil, adminToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Item
	db.First(&got, item.ID)
	assert.Equal(t, models.ItemStatusRetired, got.Status)

	// Журнал содержит все пять переходов
	resp, err = app.Test(jsonRequest("GET", fmt.Sprintf("/items/%d/history", item.ID), nil, adminToken))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	history := decodeBody(resp)["history"].([]interface{})
	assert.Len(t, history, 5)
}

// Самостоятельная выдача: выдавшим записывается сам оператор
func TestCheckOut(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/checkout", item.ID), map[string]interface{}{
		"operator_id": operator.ID,
	}, tokenFor(operator)))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var assignment models.Assignment
	db.Where("item_id = ?", item.ID).First(&assignment)
	assert.Equal(t, operator.ID, assignment.AssignedTo)
	assert.Equal(t, operator.ID, assignment.AssignedBy)
}

// Выдача получателю из другого арендатора или неактивному запрещена
func TestAssignChecksRecipient(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	admin := createTestUser(db, tenant.ID, "admin@acme.com", models.RoleTenantAdmin)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")

	other := createTestTenant(db, "globex")
	stranger := createTestUser(db, other.ID, "user@globex.com", models.RoleOperator)

	resp, err := app.Test(jsonRequest("POST", fmt.Sprintf("/items/%d/assign", item.ID), map[string]interface{}{
		"operator_id": stranger.ID,
		"assigned_by": admin.ID,
	}, tokenFor(admin)))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Предмет остался доступным
	var got models.Item
	db.First(&got, item.ID)
	assert.Equal(t, models.ItemStatusAvailable, got.Status)
}

func TestUpdateItemKeepsStatus(t *testing.T) {
	db := setupTestDB()
	app := setupTestApp(db)

	tenant := createTestTenant(db, "acme")
	operator := createTestUser(db, tenant.ID, "operator@acme.com", models.RoleOperator)
	item := createTestItem(db, tenant.ID, "Дрель", "04:AA:01")
	db.Model(item).Update("status", models.ItemStatusAssigned)

	// Редактирование атрибутов не трогает статус
	resp, err := app.Test(jsonRequest("PUT", fmt.Sprintf("/items/%d", item.ID), map[string]interface{}{
		"name":     "Дрель ударная",
		"category": "tools",
		"nfc_tag":  "04:AA:01",
		"status":   models.ItemStatusAvailable,
	}, tokenFor(operator)))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var got models.Item
	db.First(&got, item.ID)
	assert.Equal(t, "Дрель ударная", got.Name)
	assert.Equal(t, models.ItemStatusAssigned, got.Status)
}
