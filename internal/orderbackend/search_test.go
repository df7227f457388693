package orderbackend

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nayacomm/voicebridge/internal/obs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	c := New(Config{BaseURL: srv.URL, ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh"}, obs.NewLogger("test"))
	return c, srv
}

func tokenAndSearchHandler(searchBody string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			w.Write([]byte(`{"access_token":"tok-123"}`))
		case "/orders/search":
			w.Write([]byte(searchBody))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestSearchByPhoneFound(t *testing.T) {
	body := `{"result":"ok","count":1,"data":[{"order_id":"A-1","customer_name":"山田太郎","customer_email":"yamada@example.com","status":"40","order_date":"2026-07-01","delivery_method":"ヤマト運輸","tracking_number":"123","store_id":"rakuten-1","total_amount":"4980","items":[]}]}`
	c, srv := newTestClient(t, tokenAndSearchHandler(body))
	defer srv.Close()

	ic := c.SearchByPhone(context.Background(), "09012345678")
	if !ic.Found {
		t.Fatalf("expected Found=true, got %+v", ic)
	}
	if ic.CustomerName != "山田太郎" {
		t.Errorf("got customer name %q", ic.CustomerName)
	}
	if ic.CustomerEmail != "yamada@example.com" {
		t.Errorf("got customer email %q", ic.CustomerEmail)
	}
	if len(ic.Orders) != 1 || ic.Orders[0].OrderID != "A-1" {
		t.Errorf("got orders %+v", ic.Orders)
	}
	if want := "https://toi.kuronekoyamato.co.jp/cgi-bin/tneko?number=123"; ic.Orders[0].TrackingURL != want {
		t.Errorf("got tracking url %q, want %q", ic.Orders[0].TrackingURL, want)
	}
}

func TestSearchOrdersRetriesOnceAfter401(t *testing.T) {
	var tokenCalls, searchCalls int
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			tokenCalls++
			fmt.Fprintf(w, `{"access_token":"tok-%d"}`, tokenCalls)
		case "/orders/search":
			searchCalls++
			if searchCalls == 1 {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Write([]byte(`{"result":"ok","count":0,"data":[]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
	defer srv.Close()

	_, err := c.SearchOrders(context.Background(), SearchParams{Phone: "09012345678"})
	if err != nil {
		t.Fatalf("expected the retry to succeed, got %v", err)
	}
	if searchCalls != 2 {
		t.Fatalf("expected exactly one retry after the 401 (2 search calls), got %d", searchCalls)
	}
	if tokenCalls != 2 {
		t.Fatalf("expected a forced token refresh before the retry (2 token calls), got %d", tokenCalls)
	}
}

func TestSearchByPhoneNotFound(t *testing.T) {
	body := `{"result":"ok","count":0,"data":[]}`
	c, srv := newTestClient(t, tokenAndSearchHandler(body))
	defer srv.Close()

	ic := c.SearchByPhone(context.Background(), "09099999999")
	if ic.Found {
		t.Fatalf("expected Found=false, got %+v", ic)
	}
	if ic.Error {
		t.Fatalf("a zero-match result should not set Error, got %+v", ic)
	}
}

func TestSearchByPhoneBackendError(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/oauth/token" {
			w.Write([]byte(`{"access_token":"tok-123"}`))
			return
		}
		w.WriteHeader(http.StatusInternalServerError)
	})
	defer srv.Close()

	ic := c.SearchByPhone(context.Background(), "09012345678")
	if ic.Found {
		t.Fatalf("expected Found=false on backend error, got %+v", ic)
	}
	if !ic.Error {
		t.Fatalf("expected Error=true on backend error, got %+v", ic)
	}
}
