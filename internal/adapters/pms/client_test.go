package pms_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hotel_desk/internal/adapters/pms"
	"hotel_desk/internal/adapters/session"
	"hotel_desk/internal/domain"
)

type staticSessions struct {
	mu          sync.Mutex
	token       string
	invalidated int
}

func (s *staticSessions) Session(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.Session{Token: s.token}, nil
}

func (s *staticSessions) Invalidate(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if token != s.token {
		return false
	}
	s.invalidated++
	return true
}

func newClient(t *testing.T, url string, opts ...pms.Option) *pms.Client {
	t.Helper()
	cl, err := pms.New(url, 100, 2*time.Second, opts...) // high RPS for tests
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	return cl
}

func TestClient_ListRooms_RetriesThenSuccess(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("hotelId"); got != "h1" {
			t.Errorf("hotelId = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q", got)
		}
		switch atomic.AddInt32(&hits, 1) {
		case 1, 2:
			// two transient failures
			w.WriteHeader(500)
		default:
			w.WriteHeader(200)
			_, _ = w.Write([]byte(`{"data":[{"id":"r1","roomNumber":"101","floor":"1","status":"AVAILABLE",
				"category":{"id":"c1","name":"Deluxe"}}]}`))
		}
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL, pms.WithSessions(&staticSessions{token: "tok"}))
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.ListRooms(ctx, "h1")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(got) != 1 || got[0].Number != "101" || got[0].Status != domain.RoomAvailable {
		t.Fatalf("unexpected payload: %+v", got)
	}
	if got[0].CategoryID != "c1" || got[0].CategoryName() != "Deluxe" {
		t.Fatalf("category not joined: %+v", got[0])
	}
	if atomic.LoadInt32(&hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", hits)
	}
}

func TestClient_GetBooking_404(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	cl := newClient(t, ts.URL, pms.WithSessions(&staticSessions{token: "tok"}))
	_, err := cl.GetBooking(context.Background(), "b1")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClient_MutationNotRetried_APIMessage(t *testing.T) {
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Phòng đã tồn tại"}`))
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL, pms.WithSessions(&staticSessions{token: "tok"}))
	err := cl.DeleteRoom(context.Background(), "r1")
	var de *domain.Error
	if !errors.As(err, &de) || de.Kind != domain.KindAPI || de.Message != "Phòng đã tồn tại" {
		t.Fatalf("expected API error with message, got %#v", err)
	}
	if hits != 1 {
		t.Fatalf("mutation sent %d times", hits)
	}
}

func TestClient_ConnectionRefused(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	cl := newClient(t, url, pms.WithSessions(&staticSessions{token: "tok"}))
	err := cl.DeleteRoom(context.Background(), "r1")
	if domain.KindOf(err) != domain.KindConnection {
		t.Fatalf("expected connection error, got %v", err)
	}
	if !strings.Contains(err.Error(), domain.ConnectionMessage) {
		t.Fatalf("expected fixed connection message, got %q", err.Error())
	}
}

func TestClient_Unauthorized_RedirectsOnce(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	sessions := &staticSessions{token: "expired"}
	var redirects int32
	cl := newClient(t, ts.URL,
		pms.WithSessions(sessions),
		pms.WithUnauthorized(func(ctx context.Context, token string) { atomic.AddInt32(&redirects, 1) }),
	)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := cl.ListInventory(context.Background(), "h1")
			if !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("expected ErrUnauthorized, got %v", err)
			}
		}()
	}
	wg.Wait()

	if redirects != 1 {
		t.Fatalf("redirect issued %d times, want 1", redirects)
	}
	if sessions.invalidated != 1 {
		t.Fatalf("session invalidated %d times, want 1", sessions.invalidated)
	}
}

func TestClient_ForwardedTokenAndMultipart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer caller" {
			t.Errorf("Authorization = %q", got)
		}
		if r.Method != http.MethodPost || r.URL.Path != "/rooms" {
			t.Errorf("unexpected %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		if r.FormValue("roomNumber") != "201" || r.FormValue("category") != "c1" || r.FormValue("floor") != "2" {
			t.Errorf("fields: %v", r.MultipartForm.Value)
		}
		f, _, err := r.FormFile("image")
		if err != nil {
			t.Errorf("image part: %v", err)
		} else {
			b, _ := io.ReadAll(f)
			if string(b) != "png-bytes" {
				t.Errorf("image = %q", b)
			}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "r9", "roomNumber": "201", "category": "c1"})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	ctx := session.WithToken(context.Background(), "caller")
	room, err := cl.CreateRoom(ctx, domain.RoomInput{
		HotelID: "h1", Number: "201", Floor: "2", CategoryID: "c1",
		Image: &domain.Upload{Filename: "a.png", ContentType: "image/png", Data: []byte("png-bytes")},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if room.ID != "r9" || room.CategoryID != "c1" {
		t.Fatalf("unexpected room: %+v", room)
	}
}

func TestClient_NoSession(t *testing.T) {
	cl := newClient(t, "http://127.0.0.1:1")
	_, err := cl.MyHotels(context.Background())
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without a session, got %v", err)
	}
}

func TestClient_UnauthorizedWithoutTokenNotRemembered(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	var redirects int32
	cl := newClient(t, ts.URL,
		pms.WithSessions(&staticSessions{token: ""}),
		pms.WithUnauthorized(func(ctx context.Context, token string) { atomic.AddInt32(&redirects, 1) }),
	)
	for i := 0; i < 2; i++ {
		if _, err := cl.ListInventory(context.Background(), "h1"); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("expected ErrUnauthorized, got %v", err)
		}
	}
	if redirects != 2 {
		t.Fatalf("redirect issued %d times, want 2", redirects)
	}

	// a real token is still remembered once rejected
	ctx := session.WithToken(context.Background(), "expired")
	for i := 0; i < 2; i++ {
		_, _ = cl.ListInventory(ctx, "h1")
	}
	if redirects != 3 {
		t.Fatalf("redirect issued %d times, want 3", redirects)
	}
}

func TestClient_MultipartClearsOnlyOnFullUpdate(t *testing.T) {
	var got []map[string][]string
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
		}
		mu.Lock()
		got = append(got, r.MultipartForm.Value)
		mu.Unlock()
		_ = json.NewEncoder(w).Encode(map[string]any{"id": "x"})
	}))
	defer ts.Close()

	cl := newClient(t, ts.URL)
	ctx := session.WithToken(context.Background(), "caller")

	if _, err := cl.UpdateRoom(ctx, "r1", domain.RoomInput{Number: "101", Note: ""}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.UpdateRoom(ctx, "r1", domain.RoomInput{Status: domain.RoomCleaning, Partial: true}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.UpdateCategory(ctx, "c1", domain.CategoryInput{Name: "Deluxe"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, err := cl.CreateRoom(ctx, domain.RoomInput{HotelID: "h1", Number: "102"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	full, partial, category, created := got[0], got[1], got[2], got[3]
	if v, ok := full["note"]; !ok || v[0] != "" {
		t.Errorf("full update should clear note, fields: %v", full)
	}
	if _, ok := full["category"]; ok {
		t.Errorf("required field sent empty: %v", full)
	}
	if _, ok := partial["note"]; ok || partial["status"][0] != string(domain.RoomCleaning) {
		t.Errorf("partial update fields: %v", partial)
	}
	if v, ok := category["description"]; !ok || v[0] != "" {
		t.Errorf("category update should clear description, fields: %v", category)
	}
	if _, ok := created["note"]; ok {
		t.Errorf("create sent empty note: %v", created)
	}
}
