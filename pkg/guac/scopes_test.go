package guac_test

import (
	"testing"

	"github.com/RaxoCoding/guacamole-lang/pkg/guac"
)

func TestScopeDefinitions(t *testing.T) {
	test := func(s *guac.Scope, lookup string, expected int64, fail bool) {
		t.Helper()

		def := s.Lookup(lookup)
		if def == nil {
			if !fail {
				t.Errorf("expected to find %q in the scope", lookup)
			}
			return
		}
		if fail {
			t.Errorf("expected %q to be undefined, found %+v", lookup, def)
		}
		if def.Value != expected {
			t.Errorf("expected %q to hold %d, got %d", lookup, expected, def.Value)
		}
	}

	t.Run("Define then lookup", func(t *testing.T) {
		s := guac.NewScope()
		s.Define(guac.Definition{Name: "a", Kind: guac.DefInt, Value: 1})
		s.Define(guac.Definition{Name: "b", Kind: guac.DefInt, Value: 2})

		test(s, "a", 1, false)
		test(s, "b", 2, false)
		test(s, "c", 0, true)
	})

	t.Run("Redefinition updates in place", func(t *testing.T) {
		s := guac.NewScope()
		s.Define(guac.Definition{Name: "a", Kind: guac.DefInt, Value: 1})
		s.Define(guac.Definition{Name: "a", Kind: guac.DefInt, Value: 9})

		test(s, "a", 9, false)
		if s.Count() != 1 {
			t.Errorf("expected a single entry after redefinition, got %d", s.Count())
		}
	})

	t.Run("Builtins absorb writes", func(t *testing.T) {
		s := guac.NewGlobalScope()
		s.Define(guac.Definition{Name: "print", Kind: guac.DefInt, Value: 5})

		def := s.Lookup("print")
		if def == nil || !def.Builtin {
			t.Fatalf("expected 'print' to stay a builtin, got %+v", def)
		}
		if def.Value != 0 {
			t.Errorf("expected the write to a builtin to be dropped, got value %d", def.Value)
		}
	})
}

func TestScopeDuplication(t *testing.T) {
	t.Run("Copies are independent", func(t *testing.T) {
		s := guac.NewScope()
		s.Define(guac.Definition{Name: "a", Kind: guac.DefInt, Value: 1})

		dup := s.Duplicate()
		dup.Define(guac.Definition{Name: "a", Kind: guac.DefInt, Value: 99})
		dup.Define(guac.Definition{Name: "local", Kind: guac.DefInt, Value: 7})

		if def := s.Lookup("a"); def.Value != 1 {
			t.Errorf("expected the original 'a' untouched, got %d", def.Value)
		}
		if def := s.Lookup("local"); def != nil {
			t.Errorf("expected 'local' to stay in the copy only, got %+v", def)
		}
	})

	t.Run("Entry order is preserved", func(t *testing.T) {
		s := guac.NewScope()
		for _, name := range []string{"a", "b", "c"} {
			s.Define(guac.Definition{Name: name})
		}

		dup := s.Duplicate()
		if dup.Count() != s.Count() {
			t.Fatalf("expected %d entries in the copy, got %d", s.Count(), dup.Count())
		}
		for i := 0; i < s.Count(); i++ {
			if s.At(i).Name != dup.At(i).Name {
				t.Errorf("entry %d differs: %q vs %q", i, s.At(i).Name, dup.At(i).Name)
			}
		}
	})
}

func TestGlobalScope(t *testing.T) {
	t.Run("Seeded with the builtin registry", func(t *testing.T) {
		s := guac.NewGlobalScope()

		for name := range guac.Builtins {
			def := s.Lookup(name)
			if def == nil {
				t.Errorf("expected builtin %q in the global scope", name)
				continue
			}
			if !def.Builtin || def.Kind != guac.DefFunc {
				t.Errorf("expected %q to be a builtin function entry, got %+v", name, def)
			}
		}
	})

	t.Run("Names feed the suggestions", func(t *testing.T) {
		s := guac.NewGlobalScope()

		names := s.Names()
		if len(names) != s.Count() {
			t.Errorf("expected %d names, got %d", s.Count(), len(names))
		}
	})
}
