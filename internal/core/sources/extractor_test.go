package sources

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/sermonchat/internal/models"
)

func TestExtract_BothLinksInOrder(t *testing.T) {
	text := "Honour attracts grace.\n\nThe Law of Honour\nAudio: https://audio.example.com/honour.mp3\nYouTube: https://youtu.be/abc123\n"

	refs := Extract(text)
	require.Len(t, refs, 2)
	assert.Equal(t, models.SourceReference{Title: YouTubeLabel, URI: "https://youtu.be/abc123", Type: models.SourceYouTube}, refs[0])
	assert.Equal(t, models.SourceReference{Title: AudioLabel, URI: "https://audio.example.com/honour.mp3", Type: models.SourceAudio}, refs[1])
}

func TestExtract_NoLinks(t *testing.T) {
	refs := Extract("I am sorry, but I do not have specific information regarding this query.")
	assert.NotNil(t, refs)
	assert.Empty(t, refs)

	assert.Empty(t, Extract(""))
}

func TestExtract_FirstMatchOnly(t *testing.T) {
	text := "YouTube: https://youtu.be/first\nsome text\nYouTube: https://youtu.be/second"

	refs := Extract(text)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://youtu.be/first", refs[0].URI)
}

func TestExtract_CaseInsensitiveAndPartial(t *testing.T) {
	refs := Extract("audio:   http://telegram.example/t/42")
	require.Len(t, refs, 1)
	assert.Equal(t, models.SourceAudio, refs[0].Type)
	assert.Equal(t, "http://telegram.example/t/42", refs[0].URI)
}

func TestExtract_IgnoresNonURLValues(t *testing.T) {
	assert.Empty(t, Extract("YouTube: [URL]\nAudio: not available"))
}

func TestExtractReply_StructuredBlock(t *testing.T) {
	text := `Service opens doors that talent cannot.

[SOURCES]
Title: [The Mystery of Service]
YouTube: https://www.youtube.com/watch?v=svc
Audio: https://koinonia.example/audio/svc.mp3
Timestamp: 00:42:10
[/SOURCES]`

	refs, rec := ExtractReply(text)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://www.youtube.com/watch?v=svc", refs[0].URI)
	assert.Equal(t, "https://koinonia.example/audio/svc.mp3", refs[1].URI)
	require.NotNil(t, rec)
	assert.Equal(t, "The Mystery of Service", rec.Title)
	assert.Equal(t, "00:42:10", rec.Timestamp)
}

func TestExtractReply_BlockWinsOverEarlierLinks(t *testing.T) {
	text := "As he said, YouTube: https://youtu.be/inline\n[SOURCES]\nYouTube: https://youtu.be/block\n[/SOURCES]"

	refs, _ := ExtractReply(text)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://youtu.be/block", refs[0].URI)
}

func TestExtractReply_EmptyBlockFallsBack(t *testing.T) {
	text := "[sources]\nTitle: Untitled\n[/sources]\nYouTube: https://youtu.be/after"

	refs, rec := ExtractReply(text)
	require.Len(t, refs, 1)
	assert.Equal(t, "https://youtu.be/after", refs[0].URI)
	assert.Nil(t, rec)
}

func TestExtractReply_UnterminatedBlock(t *testing.T) {
	refs, rec := ExtractReply("[SOURCES]\nAudio: https://a.example/x.mp3")
	require.Len(t, refs, 1)
	assert.Equal(t, models.SourceAudio, refs[0].Type)
	assert.Nil(t, rec)
}

func TestExtractReply_BlockMissingKindFoundInBody(t *testing.T) {
	text := `Honour opens doors that talent cannot.

Listen again: Audio: https://a.example/honour.mp3

[SOURCES]
Title: The Power of Honour
YouTube: https://youtu.be/honour
[/SOURCES]`

	refs, rec := ExtractReply(text)
	require.Len(t, refs, 2)
	assert.Equal(t, models.SourceReference{Title: YouTubeLabel, URI: "https://youtu.be/honour", Type: models.SourceYouTube}, refs[0])
	assert.Equal(t, models.SourceReference{Title: AudioLabel, URI: "https://a.example/honour.mp3", Type: models.SourceAudio}, refs[1])
	require.NotNil(t, rec)
	assert.Equal(t, "The Power of Honour", rec.Title)
}

func TestExtractReply_BlockWithAudioOnlyPicksUpVideoFromBody(t *testing.T) {
	text := "Watch it here, YouTube: https://youtu.be/body\n[SOURCES]\nAudio: https://a.example/block.mp3\n[/SOURCES]"

	refs, _ := ExtractReply(text)
	require.Len(t, refs, 2)
	assert.Equal(t, "https://youtu.be/body", refs[0].URI)
	assert.Equal(t, "https://a.example/block.mp3", refs[1].URI)
}
