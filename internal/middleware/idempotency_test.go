package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cpadesk/cpadesk/internal/logging"
)

func setupTestApp(t *testing.T) (*fiber.App, func()) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}

	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	app := fiber.New()
	logger := logging.Discard()
	app.Use(Idempotency(cache, time.Minute, logger))

	calls := map[string]int{}
	handler := func(c *fiber.Ctx) error {
		calls[c.Path()]++
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"path": c.Path(), "calls": calls[c.Path()]})
	}
	app.Post("/deposits", handler)
	app.Post("/withdrawals", handler)

	cleanup := func() {
		cache.Close()
		mr.Close()
	}

	return app, cleanup
}

func TestIdempotencyPassthroughWithoutHeader(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(fiber.MethodPost, "/deposits", strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("app.Test: %v", err)
		}
		payload, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("expected %d got %d", fiber.StatusCreated, resp.StatusCode)
		}
		var decoded struct {
			Calls int `json:"calls"`
		}
		if err := json.Unmarshal(payload, &decoded); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if decoded.Calls != i+1 {
			t.Fatalf("expected handler invocation %d, got %d", i+1, decoded.Calls)
		}
	}
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	req := httptest.NewRequest(fiber.MethodPost, "/deposits", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(idempotencyKeyHeader, "abc123")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("first request: %v", err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected status %d got %d", fiber.StatusCreated, resp.StatusCode)
	}
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	resp.Body.Close()

	// Second request replays the stored response without invoking the handler.
	req2 := httptest.NewRequest(fiber.MethodPost, "/deposits", strings.NewReader("{}"))
	req2.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req2.Header.Set(idempotencyKeyHeader, "abc123")

	resp2, err := app.Test(req2)
	if err != nil {
		t.Fatalf("second request: %v", err)
	}
	if resp2.StatusCode != fiber.StatusCreated {
		t.Fatalf("expected cached status %d got %d", fiber.StatusCreated, resp2.StatusCode)
	}
	cachedPayload, err := io.ReadAll(resp2.Body)
	if err != nil {
		t.Fatalf("read cached body: %v", err)
	}
	resp2.Body.Close()

	if string(cachedPayload) != string(payload) {
		t.Fatalf("expected cached payload %s got %s", string(payload), string(cachedPayload))
	}
}

func TestIdempotencyKeyScopedPerPath(t *testing.T) {
	app, cleanup := setupTestApp(t)
	defer cleanup()

	send := func(path string) []byte {
		req := httptest.NewRequest(fiber.MethodPost, path, strings.NewReader("{}"))
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
		req.Header.Set(idempotencyKeyHeader, "shared-key")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatalf("request %s: %v", path, err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("request %s: expected %d got %d", path, fiber.StatusCreated, resp.StatusCode)
		}
		payload, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read body: %v", err)
		}
		return payload
	}

	var deposit, withdrawal struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(send("/deposits"), &deposit); err != nil {
		t.Fatalf("decode deposit: %v", err)
	}
	if err := json.Unmarshal(send("/withdrawals"), &withdrawal); err != nil {
		t.Fatalf("decode withdrawal: %v", err)
	}

	// The same key on a different endpoint must not replay the first response.
	if deposit.Path == withdrawal.Path {
		t.Fatalf("key leaked across endpoints, both responses from %s", deposit.Path)
	}
}
