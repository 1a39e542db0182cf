package translate

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"glossa/turn"
)

// requestTimeout bounds each translation request so a hung call
// resolves to the failure sentinel instead of leaving the turn
// untranslated forever.
const requestTimeout = 30 * time.Second

// Dispatcher fires one asynchronous translation per finalized turn and
// reports each result through the resolve callback, keyed by turn id.
// Completion order across turns is irrelevant to the caller.
type Dispatcher struct {
	translator Translator
	sourceLang string
	targetLang string
	resolve    func(id, translated string)
	logger     *log.Logger
	wg         sync.WaitGroup
}

func NewDispatcher(
	translator Translator,
	sourceLang, targetLang string,
	resolve func(id, translated string),
	logger *log.Logger,
) *Dispatcher {
	return &Dispatcher{
		translator: translator,
		sourceLang: sourceLang,
		targetLang: targetLang,
		resolve:    resolve,
		logger:     logger,
	}
}

// Dispatch initiates the translation and returns immediately. Empty
// text, or no configured translator, resolves at once with an empty
// translation and performs no remote call.
func (d *Dispatcher) Dispatch(t turn.Turn) {
	if t.Original == "" || d.translator == nil {
		d.resolve(t.ID, "")
		return
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(
			context.Background(),
			requestTimeout,
		)
		defer cancel()

		translated, err := d.translator.Translate(
			ctx,
			t.Original,
			d.sourceLang,
			d.targetLang,
		)
		if err != nil {
			d.logger.Error("translation failed", "turn", t.ID, "error", err)
			d.resolve(t.ID, Failed)
			return
		}

		d.logger.Info("translated", "turn", t.ID, "txt", translated)
		d.resolve(t.ID, translated)
	}()
}

// Wait blocks until every dispatched translation has resolved.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
