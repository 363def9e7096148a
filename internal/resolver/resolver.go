// Package resolver maps the citation tag in an answer back to the media
// of the retrieved entry it refers to, and strips the tag from the text
// shown to the user.
package resolver

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vsignlabs/vsignd/internal/retrieval"
)

// tagPattern matches citation tags of the form [[ID:3]].
var tagPattern = regexp.MustCompile(`\[\[ID:(\d+)\]\]`)

// Resolution is the outcome of resolving an answer against the turn's
// retrieval results.
type Resolution struct {
	// Text is the answer with all citation tags removed.
	Text string
	// Media is the asset set of the cited entry, zero-valued when
	// nothing could be resolved.
	Media retrieval.Media
}

// Resolve strips citation tags from the answer and picks the media for
// the first tag that names a known result ID carrying at least one
// asset.
//
// When no tag resolves to media but retrieval did return results, the
// top-ranked entry's media is used: the model cites unreliably, and
// showing the best match beats showing nothing. With no retrieval
// results at all, media stays empty.
func Resolve(answer string, results []retrieval.Result) Resolution {
	res := Resolution{Text: stripTags(answer)}

	byID := make(map[int]retrieval.Result, len(results))
	for _, r := range results {
		byID[r.ID] = r
	}

	for _, m := range tagPattern.FindAllStringSubmatch(answer, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		r, ok := byID[id]
		if !ok {
			continue
		}
		if r.Media.Image != nil || r.Media.Video != nil {
			res.Media = r.Media
			return res
		}
	}

	if len(results) > 0 {
		res.Media = results[0].Media
	}
	return res
}

// stripTags removes every citation tag and tidies the leftover spacing.
func stripTags(answer string) string {
	cleaned := tagPattern.ReplaceAllString(answer, "")
	cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	return strings.TrimSpace(cleaned)
}
