package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorRendering(t *testing.T) {
	t.Run("without context", func(t *testing.T) {
		err := New(CodeQuoteUnavailable)
		want := "QUOTE_UNAVAILABLE: Quote unavailable"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("context renders as sorted key=value pairs", func(t *testing.T) {
		err := New(CodeQuoteUnavailable, WithContext(map[string]any{
			"provider": "sushiswap",
			"chain_id": int64(1),
		}))
		want := "QUOTE_UNAVAILABLE: Quote unavailable (chain_id=1, provider=sushiswap)"
		if err.Error() != want {
			t.Errorf("Error() = %q, want %q", err.Error(), want)
		}
	})

	t.Run("unknown code falls back to the code itself", func(t *testing.T) {
		err := New(Code("SOMETHING_ELSE"))
		if err.Message != "SOMETHING_ELSE" {
			t.Errorf("Message = %q, want code fallback", err.Message)
		}
	})
}

func TestContextAccess(t *testing.T) {
	err := New(CodeQuoteUnavailable, WithContext(map[string]any{
		"leg":      "source",
		"provider": "oneinch",
	}))

	wrapped := fmt.Errorf("composition failed: %w", err)

	var appErr *AppError
	if !errors.As(wrapped, &appErr) {
		t.Fatal("expected AppError through the wrap chain")
	}
	if appErr.Context["leg"] != "source" {
		t.Errorf(`Context["leg"] = %v, want source`, appErr.Context["leg"])
	}
	if appErr.Context["provider"] != "oneinch" {
		t.Errorf(`Context["provider"] = %v, want oneinch`, appErr.Context["provider"])
	}
}

func TestWithContextMerges(t *testing.T) {
	err := New(CodeProviderAPIError,
		WithContext(map[string]any{"provider": "paraswap"}),
		WithContext(map[string]any{"status": 502}))

	if err.Context["provider"] != "paraswap" || err.Context["status"] != 502 {
		t.Errorf("merged context = %v", err.Context)
	}
}

func TestWrap(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := Wrap(nil, CodeInternalError, nil); got != nil {
			t.Errorf("Wrap(nil) = %v", got)
		}
	})

	t.Run("plain error gains code, context and cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := Wrap(cause, CodeFeedUnavailable, map[string]any{"feed": "chainlist"})

		if err.Code != CodeFeedUnavailable {
			t.Errorf("Code = %s", err.Code)
		}
		if err.Context["feed"] != "chainlist" {
			t.Errorf("Context = %v", err.Context)
		}
		if !errors.Is(err, cause) {
			t.Error("cause not reachable via errors.Is")
		}
	})

	t.Run("existing AppError keeps its code, merges context", func(t *testing.T) {
		inner := New(CodeProviderTimeout, WithContext(map[string]any{"provider": "kyberswap"}))
		err := Wrap(inner, CodeInternalError, map[string]any{"leg": "target"})

		if err.Code != CodeProviderTimeout {
			t.Errorf("Code = %s, want original preserved", err.Code)
		}
		if err.Context["provider"] != "kyberswap" || err.Context["leg"] != "target" {
			t.Errorf("Context = %v", err.Context)
		}
	})
}

func TestToLog(t *testing.T) {
	err := New(CodeProviderAPIError,
		WithContext(map[string]any{"provider": "sushiswap"}),
		WithCause(errors.New("502 bad gateway")))

	log := err.ToLog()
	if log["code"] != CodeProviderAPIError {
		t.Errorf("log code = %v", log["code"])
	}
	if log["ctx_provider"] != "sushiswap" {
		t.Errorf("log ctx_provider = %v", log["ctx_provider"])
	}
	if log["cause"] != "502 bad gateway" {
		t.Errorf("log cause = %v", log["cause"])
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeChainNotFound)
	if !IsCode(err, CodeChainNotFound) {
		t.Error("IsCode should match the error's own code")
	}
	if IsCode(err, CodeTokenNotFound) {
		t.Error("IsCode should not match a different code")
	}
	if IsCode(errors.New("plain"), CodeChainNotFound) {
		t.Error("IsCode should be false for non-AppErrors")
	}
}
