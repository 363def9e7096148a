package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vsignlabs/vsignd/internal/retrieval"
)

func urlPtr(s string) *string { return &s }

func sampleResults() []retrieval.Result {
	return []retrieval.Result{
		{
			ID:      1,
			Content: "Ký hiệu xin chào.",
			Media: retrieval.Media{
				Video: urlPtr("https://cdn.example.com/xin-chao.mp4"),
			},
		},
		{
			ID:      2,
			Content: "Ký hiệu cảm ơn.",
			Media: retrieval.Media{
				Image: urlPtr("https://cdn.example.com/cam-on.png"),
				Video: urlPtr("https://cdn.example.com/cam-on.mp4"),
			},
		},
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		answer    string
		results   []retrieval.Result
		wantText  string
		wantImage *string
		wantVideo *string
	}{
		{
			name:      "tag resolves to cited entry",
			answer:    "Bạn đưa tay lên ngang trán rồi hạ xuống. [[ID:2]]",
			results:   sampleResults(),
			wantText:  "Bạn đưa tay lên ngang trán rồi hạ xuống.",
			wantImage: urlPtr("https://cdn.example.com/cam-on.png"),
			wantVideo: urlPtr("https://cdn.example.com/cam-on.mp4"),
		},
		{
			name:      "tag in middle of sentence is stripped",
			answer:    "Đây là ký hiệu [[ID:1]] bạn cần.",
			results:   sampleResults(),
			wantText:  "Đây là ký hiệu bạn cần.",
			wantVideo: urlPtr("https://cdn.example.com/xin-chao.mp4"),
		},
		{
			name:      "missing tag falls back to top-ranked media",
			answer:    "Bạn làm như sau.",
			results:   sampleResults(),
			wantText:  "Bạn làm như sau.",
			wantVideo: urlPtr("https://cdn.example.com/xin-chao.mp4"),
		},
		{
			name:      "unknown id falls back to top-ranked media",
			answer:    "Bạn làm như sau. [[ID:9]]",
			results:   sampleResults(),
			wantText:  "Bạn làm như sau.",
			wantVideo: urlPtr("https://cdn.example.com/xin-chao.mp4"),
		},
		{
			name:   "cited entry without media falls back to top-ranked",
			answer: "Bạn làm như sau. [[ID:3]]",
			results: append(sampleResults(), retrieval.Result{
				ID:      3,
				Content: "Mẹo luyện tập hằng ngày.",
			}),
			wantText:  "Bạn làm như sau.",
			wantVideo: urlPtr("https://cdn.example.com/xin-chao.mp4"),
		},
		{
			name:     "no retrieval results means no media",
			answer:   "Chào bạn! [[ID:1]]",
			results:  nil,
			wantText: "Chào bạn!",
		},
		{
			name:      "first known tag wins when several are present",
			answer:    "Xem [[ID:2]] và [[ID:1]].",
			results:   sampleResults(),
			wantText:  "Xem và .",
			wantImage: urlPtr("https://cdn.example.com/cam-on.png"),
			wantVideo: urlPtr("https://cdn.example.com/cam-on.mp4"),
		},
		{
			name:     "malformed tags are left alone",
			answer:   "Xem [ID:1] và [[ID:]]",
			results:  sampleResults(),
			wantText: "Xem [ID:1] và [[ID:]]",
			// no valid tag: falls back to top-ranked media
			wantVideo: urlPtr("https://cdn.example.com/xin-chao.mp4"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.answer, tt.results)
			assert.Equal(t, tt.wantText, got.Text)

			if tt.wantImage == nil {
				assert.Nil(t, got.Media.Image)
			} else {
				require.NotNil(t, got.Media.Image)
				assert.Equal(t, *tt.wantImage, *got.Media.Image)
			}
			if tt.wantVideo == nil {
				assert.Nil(t, got.Media.Video)
			} else {
				require.NotNil(t, got.Media.Video)
				assert.Equal(t, *tt.wantVideo, *got.Media.Video)
			}
		})
	}
}

func TestResolve_TagNeverLeaksToUser(t *testing.T) {
	answers := []string{
		"[[ID:1]]",
		"text [[ID:1]] more [[ID:2]] end",
		"[[ID:42]][[ID:1]]",
	}
	for _, answer := range answers {
		got := Resolve(answer, sampleResults())
		assert.NotContains(t, got.Text, "[[ID:")
	}
}
