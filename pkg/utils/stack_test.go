package utils_test

import (
	"testing"

	"github.com/RaxoCoding/guacamole-lang/pkg/utils"
)

func TestStack(t *testing.T) {
	t.Run("Push, Top and Pop", func(t *testing.T) {
		stack := utils.NewStack(1, 2)
		stack.Push(3)

		if top, err := stack.Top(); err != nil || top != 3 {
			t.Errorf("expected top 3, got %d (%v)", top, err)
		}
		if stack.Count() != 3 {
			t.Errorf("expected 3 elements, got %d", stack.Count())
		}

		if popped, err := stack.Pop(); err != nil || popped != 3 {
			t.Errorf("expected to pop 3, got %d (%v)", popped, err)
		}
		if stack.Count() != 2 {
			t.Errorf("expected 2 elements after pop, got %d", stack.Count())
		}
	})

	t.Run("Empty stack operations fail", func(t *testing.T) {
		stack := utils.NewStack[int]()

		if _, err := stack.Top(); err == nil {
			t.Errorf("expected Top on an empty stack to fail")
		}
		if _, err := stack.Pop(); err == nil {
			t.Errorf("expected Pop on an empty stack to fail")
		}
	})

	t.Run("Ref mutates in place", func(t *testing.T) {
		stack := utils.NewStack("a", "b", "c")

		if ref := stack.Ref(0); ref == nil || *ref != "c" {
			t.Fatalf("expected Ref(0) to point at the top")
		}

		*stack.Ref(2) = "z"
		if bottom := stack.Ref(2); *bottom != "z" {
			t.Errorf("expected the bottom element rewritten, got %q", *bottom)
		}

		if stack.Ref(3) != nil || stack.Ref(-1) != nil {
			t.Errorf("expected out-of-bounds refs to be nil")
		}
	})

	t.Run("Clone shares no storage", func(t *testing.T) {
		stack := utils.NewStack(1, 2, 3)
		clone := stack.Clone()

		*clone.Ref(0) = 99
		if *stack.Ref(0) == 99 {
			t.Errorf("expected the original untouched by writes to the clone")
		}
		if clone.Count() != stack.Count() {
			t.Errorf("expected equal sizes, got %d and %d", clone.Count(), stack.Count())
		}
	})

	t.Run("Iterator walks newest-first", func(t *testing.T) {
		stack := utils.NewStack("a", "b", "c")

		collected := []string{}
		stack.Iterator()(func(depth int, elem string) bool {
			collected = append(collected, elem)
			return true
		})

		if len(collected) != 3 || collected[0] != "c" || collected[2] != "a" {
			t.Errorf("expected [c b a], got %v", collected)
		}
	})
}
