// Package sources pulls sermon links out of a model answer.
//
// The system instruction asks the model to end every answer with a delimited
// [SOURCES] block, which is parsed deterministically. Each link kind the block
// does not carry is looked up in the whole text with a regular expression.
package sources

import (
	"regexp"
	"strings"

	"github.com/markdave123-py/sermonchat/internal/models"
)

const (
	blockOpen  = "[sources]"
	blockClose = "[/sources]"

	YouTubeLabel = "Watch on YouTube"
	AudioLabel   = "Download Audio"
)

var (
	youtubePattern = regexp.MustCompile(`(?i)YouTube:\s*(https?://\S+)`)
	audioPattern   = regexp.MustCompile(`(?i)Audio:\s*(https?://\S+)`)
)

// Extract returns at most one video and one audio reference, in that order.
func Extract(text string) []models.SourceReference {
	refs, _ := ExtractReply(text)
	return refs
}

// ExtractReply is Extract plus the recommended sermon title and timestamp,
// which are only available from the structured block.
// A link in the block wins over one elsewhere in the text for the same kind.
func ExtractReply(text string) ([]models.SourceReference, *models.Recommendation) {
	b, ok := parseBlock(text)
	if !ok || (b.youtube == "" && b.audio == "") {
		return fallbackExtract(text), nil
	}
	if b.youtube == "" {
		b.youtube = firstMatch(youtubePattern, text)
	}
	if b.audio == "" {
		b.audio = firstMatch(audioPattern, text)
	}
	return b.references(), b.recommendation()
}

// fallbackExtract is the best-effort regex parser. Only the first match of
// each kind is used.
func fallbackExtract(text string) []models.SourceReference {
	b := block{
		youtube: firstMatch(youtubePattern, text),
		audio:   firstMatch(audioPattern, text),
	}
	return b.references()
}

func firstMatch(re *regexp.Regexp, text string) string {
	if m := re.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

type block struct {
	title     string
	youtube   string
	audio     string
	timestamp string
}

// parseBlock reads the first [SOURCES] block. An unterminated block runs to
// the end of the text.
func parseBlock(text string) (block, bool) {
	lower := strings.ToLower(text)
	start := strings.Index(lower, blockOpen)
	if start < 0 {
		return block{}, false
	}
	body := text[start+len(blockOpen):]
	if end := strings.Index(strings.ToLower(body), blockClose); end >= 0 {
		body = body[:end]
	}

	var b block
	for _, line := range strings.Split(body, "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "title":
			if b.title == "" {
				b.title = strings.Trim(value, "[]")
			}
		case "youtube":
			if b.youtube == "" {
				b.youtube = firstURL(value)
			}
		case "audio":
			if b.audio == "" {
				b.audio = firstURL(value)
			}
		case "timestamp":
			if b.timestamp == "" {
				b.timestamp = value
			}
		}
	}
	return b, true
}

func firstURL(value string) string {
	fields := strings.Fields(value)
	if len(fields) == 0 {
		return ""
	}
	u := fields[0]
	lu := strings.ToLower(u)
	if !strings.HasPrefix(lu, "http://") && !strings.HasPrefix(lu, "https://") {
		return ""
	}
	return u
}

func (b block) references() []models.SourceReference {
	refs := make([]models.SourceReference, 0, 2)
	if b.youtube != "" {
		refs = append(refs, models.SourceReference{Title: YouTubeLabel, URI: b.youtube, Type: models.SourceYouTube})
	}
	if b.audio != "" {
		refs = append(refs, models.SourceReference{Title: AudioLabel, URI: b.audio, Type: models.SourceAudio})
	}
	return refs
}

func (b block) recommendation() *models.Recommendation {
	if b.title == "" && b.timestamp == "" {
		return nil
	}
	return &models.Recommendation{Title: b.title, Timestamp: b.timestamp}
}
