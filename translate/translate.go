// Package translate turns finalized transcript text into the target
// language, one asynchronous request per turn.
package translate

import (
	"context"
)

// Failed is the sentinel written into a turn's translation when the
// request fails. It is distinguishable from a legitimately empty
// translation and is never retried.
const Failed = "[translation failed]"

// Translator performs one text translation per call. No streaming.
type Translator interface {
	Translate(
		ctx context.Context,
		text, sourceLang, targetLang string,
	) (string, error)
}
