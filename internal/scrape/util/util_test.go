package util

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"leadhunt-engine/internal/apperr"
)

func TestGetJSONClassifiesFailures(t *testing.T) {
	tests := []struct {
		status int
		body   string
		want   apperr.Kind
	}{
		{401, "", apperr.Auth},
		{403, "nope", apperr.Auth},
		{429, "", apperr.RateLimit},
		{500, "", apperr.HTTP},
		{404, "", apperr.HTTP},
		{200, "{not json", apperr.Parse},
	}
	for _, tt := range tests {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = w.Write([]byte(tt.body))
		}))
		var out map[string]any
		err := GetJSON(context.Background(), srv.Client(), "test", srv.URL, &out)
		srv.Close()
		if got := apperr.KindOf(err); got != tt.want {
			t.Errorf("status %d: kind = %v, want %v (err=%v)", tt.status, got, tt.want, err)
		}
	}
}

func TestGetJSONNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	var out any
	err := GetJSON(context.Background(), &http.Client{Timeout: time.Second}, "test", url, &out)
	if !apperr.Is(err, apperr.Network) {
		t.Fatalf("err = %v, want network", err)
	}
}

func TestGetJSONDecodes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != UserAgent {
			t.Errorf("missing user agent")
		}
		_, _ = w.Write([]byte(`{"jobs":[{"id":1}]}`))
	}))
	defer srv.Close()

	var out struct {
		Jobs []struct {
			ID int `json:"id"`
		} `json:"jobs"`
	}
	if err := GetJSON(context.Background(), srv.Client(), "test", srv.URL, &out); err != nil {
		t.Fatal(err)
	}
	if len(out.Jobs) != 1 || out.Jobs[0].ID != 1 {
		t.Fatalf("out = %+v", out)
	}
}

func TestHTMLToText(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"<p>Build <b>great</b>\n products</p>", "Build great products"},
		{"&lt;div&gt;Escaped &amp;amp; nested&lt;/div&gt;", "Escaped & nested"},
		{"plain text", "plain text"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := HTMLToText(tt.in); got != tt.want {
			t.Errorf("HTMLToText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestClip(t *testing.T) {
	if got := Clip("abcdef", 3); got != "abc..." {
		t.Errorf("Clip = %q", got)
	}
	if got := Clip("ab", 3); got != "ab..." {
		t.Errorf("Clip short = %q", got)
	}
	if Clip("", 3) != "" {
		t.Errorf("Clip empty")
	}
}

func TestHostLimiterPause(t *testing.T) {
	var slept []time.Duration
	hl := NewHostLimiter(1000, 10).WithPause(time.Second, 3*time.Second)
	hl.Sleep = func(_ context.Context, d time.Duration) error {
		slept = append(slept, d)
		return nil
	}
	for i := 0; i < 3; i++ {
		if err := hl.WaitURL(context.Background(), "https://api.lever.co/v0/postings/acme"); err != nil {
			t.Fatal(err)
		}
	}
	if len(slept) != 3 {
		t.Fatalf("pauses = %d, want 3", len(slept))
	}
	for _, d := range slept {
		if d < time.Second || d >= 3*time.Second {
			t.Errorf("pause %v outside [1s,3s)", d)
		}
	}

	var nilLimiter *HostLimiter
	if err := nilLimiter.WaitURL(context.Background(), "x"); err != nil {
		t.Fatalf("nil limiter should be a no-op: %v", err)
	}
}
