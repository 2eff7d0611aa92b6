package table

import "testing"

func TestMerge(t *testing.T) {
	t.Run("Zero Config Uses Defaults", func(t *testing.T) {
		cfg := merge(Config{})
		def := DefaultConfig()
		if cfg.Limit != def.Limit || cfg.KeyPrefix != def.KeyPrefix || cfg.Noun != def.Noun {
			t.Errorf("expected defaults, got %+v", cfg)
		}
		if cfg.Messages != def.Messages || cfg.Args != def.Args {
			t.Errorf("expected default messages and args, got %+v %+v", cfg.Messages, cfg.Args)
		}
	})

	t.Run("Messages Merge Field By Field", func(t *testing.T) {
		cfg := merge(Config{Messages: Messages{Failed: "Nope", Summary: SummaryPages}})
		if cfg.Messages.Loading != "Loading..." || cfg.Messages.Failed != "Nope" || cfg.Messages.Summary != SummaryPages {
			t.Errorf("unexpected messages %+v", cfg.Messages)
		}
	})

	t.Run("Formatters Replace Defaults", func(t *testing.T) {
		f := func(raw any, _ Record) any { return raw }
		cfg := merge(Config{Formatters: map[string]Formatter{"a": f}})
		if len(cfg.Formatters) != 1 || cfg.Formatters["a"] == nil {
			t.Errorf("unexpected formatters %v", cfg.Formatters)
		}
	})

	t.Run("Caller Maps Are Not Aliased", func(t *testing.T) {
		headers := map[string]string{"X-Custom": "1"}
		cfg := merge(Config{Headers: headers})
		headers["X-Custom"] = "2"
		if cfg.Headers["X-Custom"] != "1" {
			t.Errorf("expected merged headers to be a copy, got %q", cfg.Headers["X-Custom"])
		}
	})
}

func TestClampLimit(t *testing.T) {
	for in, want := range map[int]int{-1: 1, 0: 1, 1: 1, 50: 50, 100: 100, 101: 100} {
		if got := clampLimit(in); got != want {
			t.Errorf("clampLimit(%d) = %d, want %d", in, got, want)
		}
	}
}
