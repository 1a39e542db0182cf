package translate

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"glossa/turn"
)

type stubTranslator struct {
	result  string
	err     error
	release chan struct{} // when non-nil, Translate blocks until closed

	mu    sync.Mutex
	calls int
}

func (s *stubTranslator) Translate(
	ctx context.Context,
	text, sourceLang, targetLang string,
) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.release != nil {
		<-s.release
	}
	return s.result, s.err
}

func (s *stubTranslator) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

type resolveRecorder struct {
	mu      sync.Mutex
	results map[string]string
}

func newResolveRecorder() *resolveRecorder {
	return &resolveRecorder{results: make(map[string]string)}
}

func (r *resolveRecorder) resolve(id, translated string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results[id] = translated
}

func (r *resolveRecorder) get(id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.results[id]
	return v, ok
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func TestDispatch(t *testing.T) {
	t.Run("Success Resolves By ID", func(t *testing.T) {
		rec := newResolveRecorder()
		d := NewDispatcher(
			&stubTranslator{result: "World hello"},
			"es", "en",
			rec.resolve,
			quietLogger(),
		)

		d.Dispatch(turn.Turn{ID: "t1", Original: "Hola mundo", IsFinal: true})
		d.Wait()

		got, ok := rec.get("t1")
		if !ok || got != "World hello" {
			t.Errorf("resolved %q ok=%v, want %q", got, ok, "World hello")
		}
	})

	t.Run("Failure Writes Sentinel", func(t *testing.T) {
		rec := newResolveRecorder()
		d := NewDispatcher(
			&stubTranslator{err: errors.New("remote unavailable")},
			"es", "en",
			rec.resolve,
			quietLogger(),
		)

		d.Dispatch(turn.Turn{ID: "t1", Original: "Hola", IsFinal: true})
		d.Wait()

		got, _ := rec.get("t1")
		if got != Failed {
			t.Errorf("resolved %q, want sentinel %q", got, Failed)
		}
	})

	t.Run("Empty Original Skips Remote Call", func(t *testing.T) {
		rec := newResolveRecorder()
		stub := &stubTranslator{result: "should not be used"}
		d := NewDispatcher(stub, "es", "en", rec.resolve, quietLogger())

		d.Dispatch(turn.Turn{ID: "t1", IsFinal: true})
		d.Wait()

		if got, ok := rec.get("t1"); !ok || got != "" {
			t.Errorf("resolved %q ok=%v, want empty translation", got, ok)
		}
		if stub.callCount() != 0 {
			t.Errorf("translator called %d times, want 0", stub.callCount())
		}
	})

	t.Run("Nil Translator Resolves Immediately", func(t *testing.T) {
		rec := newResolveRecorder()
		d := NewDispatcher(nil, "es", "en", rec.resolve, quietLogger())

		d.Dispatch(turn.Turn{ID: "t1", Original: "Hola", IsFinal: true})

		if got, ok := rec.get("t1"); !ok || got != "" {
			t.Errorf("resolved %q ok=%v, want empty translation", got, ok)
		}
	})

	t.Run("Out Of Order Completion", func(t *testing.T) {
		rec := newResolveRecorder()
		slow := &stubTranslator{
			result:  "one",
			release: make(chan struct{}),
		}
		slowDispatcher := NewDispatcher(
			slow, "es", "en", rec.resolve, quietLogger(),
		)
		fastDispatcher := NewDispatcher(
			&stubTranslator{result: "two"}, "es", "en",
			rec.resolve, quietLogger(),
		)

		slowDispatcher.Dispatch(turn.Turn{ID: "t1", Original: "uno"})
		fastDispatcher.Dispatch(turn.Turn{ID: "t2", Original: "dos"})
		fastDispatcher.Wait()

		// T2 resolved while T1 is still in flight.
		if _, ok := rec.get("t1"); ok {
			t.Error("t1 resolved before its translator returned")
		}
		if got, _ := rec.get("t2"); got != "two" {
			t.Errorf("t2 resolved to %q, want %q", got, "two")
		}

		close(slow.release)
		slowDispatcher.Wait()

		if got, _ := rec.get("t1"); got != "one" {
			t.Errorf("t1 resolved to %q, want %q", got, "one")
		}
	})
}
