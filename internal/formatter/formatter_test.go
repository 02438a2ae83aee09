package formatter

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quizsquirrel/social-api/internal/models"
)

func TestCleanTag(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Science & Fun!":     "science-fun",
		"Science":            "science",
		"  Trailing Space  ": "trailing-space",
		"UPPER_case-mixed":   "upper-case-mixed",
		"emoji 🐿️ tag":       "emoji-tag",
		"!!!":                "",
		"a  b":               "a-b",
	}
	for in, want := range cases {
		assert.Equal(t, want, CleanTag(in), "input %q", in)
		// Idempotent: cleaning twice changes nothing.
		assert.Equal(t, want, CleanTag(CleanTag(in)), "input %q", in)
	}

	long := strings.Repeat("verylongtag", 10)
	assert.Equal(t, 50, utf8.RuneCountInString(CleanTag(long)))
}

func TestBuildTags(t *testing.T) {
	t.Parallel()

	quiz := &models.Quiz{Category: "Pop Culture"}
	assert.Equal(t, []string{"quiz", "personality quiz", "quiz squirrel", "pop-culture"}, BuildTags(quiz))

	// No category, no trailing empty tag.
	assert.Equal(t, []string{"quiz", "personality quiz", "quiz squirrel"}, BuildTags(&models.Quiz{}))
}

func TestAttribution(t *testing.T) {
	t.Parallel()

	creator := &models.User{ID: 1, DisplayName: "Hazel"}
	assert.Equal(t, "Hazel", Attribution(creator, creator))
	assert.Equal(t, "Hazel", Attribution(creator, nil))

	resharer := &models.User{ID: 2, DisplayName: "Moss"}
	assert.Equal(t, "shared by Moss — created by Hazel", Attribution(creator, resharer))
}

func TestTruncateRunes_CountsCodePoints(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "short", TruncateRunes("short", 10))
	assert.Equal(t, "ab", TruncateRunes("abcd", 2))
	// 4 emoji are 4 code points, not 16 bytes.
	assert.Equal(t, "🐿🐿", TruncateRunes("🐿🐿🐿🐿", 2))
}

func previewQuiz() *models.Quiz {
	return &models.Quiz{
		ID:            7,
		Title:         "Which Squirrel Are You?",
		Description:   "An extremely scientific assessment.",
		Category:      "Animals",
		CoverImageURL: "https://cdn.example/cover.png",
		Questions: []models.Question{{
			Type:   models.QuestionPersonality,
			Prompt: "Pick a snack 🥜",
			Outcomes: []models.PersonalityOption{
				{Label: "Acorns, obviously", Outcome: "red"},
				{Label: "Café crème ☕", Outcome: "grey"},
			},
		}},
	}
}

func TestTumblrBlocks_OrderAndContent(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	blocks := TumblrBlocks(quiz, "https://quizsquirrel.com/q/which-squirrel", "Hazel", "")

	require.Len(t, blocks, 8)

	assert.Equal(t, "heading1", blocks[0].Subtype)
	assert.Equal(t, quiz.Title, blocks[0].Text)

	assert.Equal(t, "image", blocks[1].Type)
	assert.Equal(t, quiz.CoverImageURL, blocks[1].Media[0].URL)

	assert.Equal(t, quiz.Description, blocks[2].Text)

	assert.Equal(t, "heading2", blocks[3].Subtype)
	assert.Equal(t, "Pick a snack 🥜", blocks[3].Text)

	assert.Equal(t, "link", blocks[6].Type)
	assert.Equal(t, "https://quizsquirrel.com/q/which-squirrel", blocks[6].URL)

	assert.Equal(t, "Hazel", blocks[7].Text)
}

func TestTumblrBlocks_OptionLinkRangesAreRuneBased(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	blocks := TumblrBlocks(quiz, "https://quizsquirrel.com/q/which-squirrel", "", "")

	// Options follow the question heading.
	option := blocks[4]
	require.Len(t, option.Formatting, 1)
	f := option.Formatting[0]
	assert.Equal(t, "link", f.Type)
	assert.Equal(t, 2, f.Start) // after "👉 ", two code points
	assert.Equal(t, 2+utf8.RuneCountInString("Acorns, obviously"), f.End)

	unicodeOption := blocks[5]
	require.Len(t, unicodeOption.Formatting, 1)
	assert.Equal(t, 2+utf8.RuneCountInString("Café crème ☕"), unicodeOption.Formatting[0].End)
	// Byte counting would overshoot.
	assert.Less(t, unicodeOption.Formatting[0].End, 2+len("Café crème ☕"))
}

func TestTumblrBlocks_CustomMessageReplacesDescription(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	blocks := TumblrBlocks(quiz, "https://quizsquirrel.com/q/7", "Hazel", "Try my new quiz!")

	assert.Equal(t, "Try my new quiz!", blocks[2].Text)
	for _, b := range blocks {
		assert.NotEqual(t, quiz.Description, b.Text)
	}
}

func TestFacebookMessage(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	msg := FacebookMessage(quiz, "https://quizsquirrel.com/q/7", "Hazel", "")

	lines := strings.Split(msg, "\n\n")
	require.Len(t, lines, 4)
	assert.Equal(t, quiz.Title, lines[0])
	assert.Equal(t, quiz.Description, lines[1])
	assert.Equal(t, "https://quizsquirrel.com/q/7", lines[2])
	assert.Equal(t, "Hazel", lines[3])
}

func TestFacebookMessage_TruncatesLongDescription(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	quiz.Description = strings.Repeat("🌰", 300)

	msg := FacebookMessage(quiz, "https://quizsquirrel.com/q/7", "", "")
	lines := strings.Split(msg, "\n\n")
	require.GreaterOrEqual(t, len(lines), 2)
	assert.Equal(t, 201, utf8.RuneCountInString(lines[1])) // 200 + ellipsis
	assert.True(t, strings.HasSuffix(lines[1], "…"))
}

func TestFacebookMessage_CustomMessageSkipsDescription(t *testing.T) {
	t.Parallel()

	quiz := previewQuiz()
	msg := FacebookMessage(quiz, "https://quizsquirrel.com/q/7", "Hazel", "Play this!")

	assert.True(t, strings.HasPrefix(msg, "Play this!"))
	assert.NotContains(t, msg, quiz.Description)
}
