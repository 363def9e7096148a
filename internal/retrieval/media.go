package retrieval

import "strings"

// mediaURL extracts a usable URL from a raw metadata value. Corpus
// metadata is not uniform: values arrive as a plain URL, as a
// stringified list like "['https://...']", or as junk. Anything that
// does not contain an http marker is treated as absent. Never fails:
// a bad value yields nil rather than an error.
func mediaURL(raw string) *string {
	v := strings.TrimSpace(raw)
	if v == "" {
		return nil
	}

	// Stringified single-element list, e.g. "['https://...']" or
	// ["https://..."]. Peel the brackets and quotes off.
	if strings.HasPrefix(v, "[") && strings.HasSuffix(v, "]") {
		v = strings.TrimSpace(v[1 : len(v)-1])
		// Keep only the first element when several are listed.
		if i := strings.IndexByte(v, ','); i >= 0 {
			v = strings.TrimSpace(v[:i])
		}
		v = strings.Trim(v, `'"`)
		v = strings.TrimSpace(v)
	}

	if !strings.Contains(v, "http") {
		return nil
	}
	return &v
}

// mediaFromMetadata builds a Media from a corpus entry's metadata map,
// tolerating absent keys and malformed values. Corpus entries key media
// as either "Image"/"Video" or all-lowercase.
func mediaFromMetadata(meta map[string]string) Media {
	if meta == nil {
		return Media{}
	}
	return Media{
		Image: mediaURL(metaValue(meta, "Image")),
		Video: mediaURL(metaValue(meta, "Video")),
	}
}

func metaValue(meta map[string]string, key string) string {
	if v, ok := meta[key]; ok && v != "" {
		return v
	}
	return meta[strings.ToLower(key)]
}
