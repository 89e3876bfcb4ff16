package build

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Fingerprint collects the inputs of one rendered page. Two builds that
// produce the same RenderHash for an output path write identical bytes.
type Fingerprint struct {
	ContentHash  string
	ThemeHash    string
	ConfigHash   string
	RendererHash string
	// 页面依赖的其他数据，例如列表页里的文章
	Extra []string
}

func (f Fingerprint) RenderHash() string {
	h := sha256.New()
	for _, part := range append([]string{f.ContentHash, f.ThemeHash, f.ConfigHash, f.RendererHash}, f.Extra...) {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Record summarises a finished build.
type Record struct {
	ID        string        `json:"id"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Locales   []string      `json:"locales"`
	Articles  int           `json:"articles"`
	Written   int           `json:"written"`
	Skipped   int           `json:"skipped"`
	Warnings  int           `json:"warnings"`
}
