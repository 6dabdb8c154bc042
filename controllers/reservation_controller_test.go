package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"Gin_postgres_redis_booking_system/db"
	"Gin_postgres_redis_booking_system/models"

	"github.com/gin-gonic/gin"
)

type fakeReservationStore struct {
	createErr error
	updateErr error
	deleteErr error
	findErr   error

	ownerEmail string // FindReservationByID 返回的预订归属人
	refRows    []models.Reservation

	lastCreate   db.CreateReservationInput
	lastUpdate   db.UpdateReservationInput
	lastID       string
	updateCalled bool
	deleteCalled bool
}

func (f *fakeReservationStore) CreateReservation(_ context.Context, in db.CreateReservationInput) ([]models.Reservation, error) {
	f.lastCreate = in
	if f.createErr != nil {
		return nil, f.createErr
	}
	rows := make([]models.Reservation, 0, len(in.Dates))
	for i, d := range in.Dates {
		rows = append(rows, models.Reservation{
			ID:              "res-" + string(rune('a'+i)),
			BookingRef:      "ref-1",
			ItemID:          in.ItemID,
			ReservationDate: d,
			Quantity:        in.Quantity,
			FullName:        in.FullName,
			UserEmail:       in.UserEmail,
			UserPhone:       in.UserPhone,
		})
	}
	return rows, nil
}

func (f *fakeReservationStore) UpdateReservation(_ context.Context, id string, in db.UpdateReservationInput) (*models.Reservation, error) {
	f.lastID, f.lastUpdate = id, in
	f.updateCalled = true
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.Reservation{ID: id}, nil
}

func (f *fakeReservationStore) DeleteReservation(_ context.Context, id string) error {
	f.lastID = id
	f.deleteCalled = true
	return f.deleteErr
}

func (f *fakeReservationStore) FindReservationByID(_ context.Context, id string) (*models.Reservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	email := f.ownerEmail
	if email == "" {
		email = "alice@example.com"
	}
	return &models.Reservation{ID: id, UserEmail: email}, nil
}

func (f *fakeReservationStore) FindByBookingRef(context.Context, string) ([]models.Reservation, error) {
	return f.refRows, nil
}

func (f *fakeReservationStore) ListReservations(context.Context, db.ReservationQuery) ([]models.Reservation, error) {
	return nil, nil
}

func (f *fakeReservationStore) ListBookedDates(context.Context, string) ([]string, error) {
	return []string{"2025-06-01"}, nil
}

// newTestRouterAs 模拟 AuthRequired 注入的登录态
func newTestRouterAs(store ReservationStore, email string, isAdmin bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "user-1")
		c.Set("email", email)
		c.Set("isAdmin", isAdmin)
	})
	rc := NewReservationController(store)
	r.POST("/api/reservations", rc.Create)
	r.GET("/api/reservations/:id", rc.Get)
	r.GET("/api/reservations/ref/:ref", rc.GetByRef)
	r.PUT("/api/reservations/:id", rc.Update)
	r.DELETE("/api/reservations/:id", rc.Cancel)
	r.GET("/api/reservations", rc.List)
	r.GET("/api/reservations/booked-dates/:itemId", rc.BookedDates)
	return r
}

func newTestRouter(store ReservationStore) *gin.Engine {
	return newTestRouterAs(store, "alice@example.com", false)
}

func postJSON(r *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func validCreateBody() map[string]any {
	return map[string]any{
		"itemId": "item-1",
		"dates":  []string{"2030-06-01", "2030-06-02"},
		"requester": map[string]any{
			"name":  "Alice Chen",
			"email": "alice@example.com",
			"phone": "+886912345678",
		},
		"note": "handle with care",
	}
}

func TestCreateReservationCreated(t *testing.T) {
	store := &fakeReservationStore{}
	r := newTestRouter(store)

	w := postJSON(r, "/api/reservations", validCreateBody())
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201, body %s", w.Code, w.Body.String())
	}

	var resp struct {
		BookingRef   string               `json:"bookingRef"`
		Reservations []models.Reservation `json:"reservations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.BookingRef == "" || len(resp.Reservations) != 2 {
		t.Errorf("unexpected response: %+v", resp)
	}
	// 没填 quantity 时缺省 1
	if store.lastCreate.Quantity != 1 {
		t.Errorf("default quantity = %d, want 1", store.lastCreate.Quantity)
	}
	// 请求人信息原样进库
	if store.lastCreate.FullName != "Alice Chen" || store.lastCreate.UserEmail != "alice@example.com" {
		t.Errorf("requester fields not passed through: %+v", store.lastCreate)
	}
}

func TestCreateReservationBadRequests(t *testing.T) {
	r := newTestRouter(&fakeReservationStore{})

	body := validCreateBody()
	delete(body, "requester")
	if w := postJSON(r, "/api/reservations", body); w.Code != http.StatusBadRequest {
		t.Errorf("missing requester: status = %d, want 400", w.Code)
	}

	body = validCreateBody()
	body["dates"] = []string{"06/01/2030"}
	if w := postJSON(r, "/api/reservations", body); w.Code != http.StatusBadRequest {
		t.Errorf("bad date format: status = %d, want 400", w.Code)
	}

	body = validCreateBody()
	if m, ok := body["requester"].(map[string]any); ok {
		m["email"] = "not-an-email"
	}
	if w := postJSON(r, "/api/reservations", body); w.Code != http.StatusBadRequest {
		t.Errorf("bad email: status = %d, want 400", w.Code)
	}
}

func TestCreateReservationAdmissionErrors(t *testing.T) {
	cases := []struct {
		err      error
		status   int
		wantCode string
	}{
		{db.ErrItemNotFound, http.StatusNotFound, "not_found"},
		{db.ErrItemUnavailable, http.StatusConflict, "item_unavailable"},
		{db.ErrCapacityExceeded, http.StatusConflict, "capacity_exceeded"},
		{db.ErrConflict, http.StatusConflict, "conflict"},
		{db.ErrInvalidRequest, http.StatusBadRequest, "invalid_request"},
	}
	for _, tc := range cases {
		r := newTestRouter(&fakeReservationStore{createErr: tc.err})
		w := postJSON(r, "/api/reservations", validCreateBody())
		if w.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, w.Code, tc.status)
		}
		var resp map[string]any
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp["error"] != tc.wantCode {
			t.Errorf("%v: error code = %v, want %q", tc.err, resp["error"], tc.wantCode)
		}
	}
}

func TestUpdateReservationParsesDate(t *testing.T) {
	store := &fakeReservationStore{}
	r := newTestRouter(store)

	b, _ := json.Marshal(map[string]any{"date": "2030-07-01", "quantity": 2})
	req := httptest.NewRequest(http.MethodPut, "/api/reservations/res-1", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	if store.lastID != "res-1" {
		t.Errorf("id = %q, want res-1", store.lastID)
	}
	if store.lastUpdate.ReservationDate == nil || !store.lastUpdate.ReservationDate.Equal(time.Date(2030, 7, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("date not parsed: %+v", store.lastUpdate.ReservationDate)
	}
	if store.lastUpdate.Quantity == nil || *store.lastUpdate.Quantity != 2 {
		t.Errorf("quantity not passed: %+v", store.lastUpdate.Quantity)
	}
}

func TestCancelReservationNotFound(t *testing.T) {
	r := newTestRouter(&fakeReservationStore{findErr: db.ErrReservationNotFound})

	req := httptest.NewRequest(http.MethodDelete, "/api/reservations/gone", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

// 别人的预订改不了也取消不了；管理员可以
func TestReservationOwnership(t *testing.T) {
	store := &fakeReservationStore{ownerEmail: "alice@example.com"}
	r := newTestRouterAs(store, "mallory@example.com", false)

	b, _ := json.Marshal(map[string]any{"quantity": 2})
	req := httptest.NewRequest(http.MethodPut, "/api/reservations/res-1", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("update by stranger: status = %d, want 403", w.Code)
	}
	if store.updateCalled {
		t.Error("update by stranger must not reach the store")
	}

	req = httptest.NewRequest(http.MethodDelete, "/api/reservations/res-1", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Errorf("cancel by stranger: status = %d, want 403", w.Code)
	}
	if store.deleteCalled {
		t.Error("cancel by stranger must not reach the store")
	}

	// 管理员不受归属限制
	admin := newTestRouterAs(store, "admin@example.com", true)
	req = httptest.NewRequest(http.MethodDelete, "/api/reservations/res-1", nil)
	w = httptest.NewRecorder()
	admin.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("cancel by admin: status = %d, want 200", w.Code)
	}

	// 本人大小写不同也算同一邮箱
	owner := newTestRouterAs(store, "Alice@Example.com", false)
	req = httptest.NewRequest(http.MethodGet, "/api/reservations/res-1", nil)
	w = httptest.NewRecorder()
	owner.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("get by owner: status = %d, want 200", w.Code)
	}
}

func TestGetByBookingRef(t *testing.T) {
	store := &fakeReservationStore{refRows: []models.Reservation{
		{ID: "res-a", BookingRef: "ref-1", UserEmail: "alice@example.com"},
		{ID: "res-b", BookingRef: "ref-1", UserEmail: "alice@example.com"},
	}}
	r := newTestRouter(store)

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/ref/ref-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Reservations []models.Reservation `json:"reservations"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Reservations) != 2 {
		t.Errorf("got %d reservations, want 2", len(resp.Reservations))
	}

	// 未知 ref → 404
	empty := newTestRouter(&fakeReservationStore{})
	req = httptest.NewRequest(http.MethodGet, "/api/reservations/ref/missing", nil)
	w = httptest.NewRecorder()
	empty.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown ref: status = %d, want 404", w.Code)
	}
}

func TestBookedDates(t *testing.T) {
	r := newTestRouter(&fakeReservationStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/reservations/booked-dates/item-1", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp struct {
		BookedDates []string `json:"bookedDates"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.BookedDates) != 1 || resp.BookedDates[0] != "2025-06-01" {
		t.Errorf("bookedDates = %v", resp.BookedDates)
	}
}
