// Package formatter turns a quiz into platform post payloads. Everything here
// is a pure function of its inputs.
package formatter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quizsquirrel/social-api/internal/models"
	"github.com/quizsquirrel/social-api/internal/transfer"
)

const (
	maxTagLength      = 50
	facebookDescLimit = 200
	maxPreviewOptions = 4
)

// Attribution names the quiz creator, and the resharer when they differ.
func Attribution(creator, publisher *models.User) string {
	if publisher == nil || publisher.ID == creator.ID {
		return creator.DisplayName
	}
	return fmt.Sprintf("shared by %s — created by %s", publisher.DisplayName, creator.DisplayName)
}

// CleanTag lowercases, strips punctuation, turns spaces into hyphens, and
// caps the result at 50 code points.
func CleanTag(tag string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(tag)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case unicode.IsSpace(r) || r == '-' || r == '_':
			b.WriteRune('-')
		}
	}
	cleaned := strings.Trim(b.String(), "-")
	for strings.Contains(cleaned, "--") {
		cleaned = strings.ReplaceAll(cleaned, "--", "-")
	}
	return TruncateRunes(cleaned, maxTagLength)
}

// BuildTags cleans the quiz category and appends the fixed platform tags.
func BuildTags(quiz *models.Quiz) []string {
	tags := []string{"quiz", "personality quiz", "quiz squirrel"}
	if c := CleanTag(quiz.Category); c != "" {
		tags = append(tags, c)
	}
	return tags
}

// TruncateRunes caps s at max code points. Counting bytes here would split
// emoji and misalign every formatting range computed afterwards.
func TruncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	return string([]rune(s)[:max])
}

// TumblrBlocks assembles the ordered NPF block list: heading, cover image,
// message text, a preview of the first question with linked options, a
// link-preview card, and the attribution line.
func TumblrBlocks(quiz *models.Quiz, quizURL, attribution, customMessage string) []transfer.NPFBlock {
	blocks := []transfer.NPFBlock{
		{Type: "text", Subtype: "heading1", Text: quiz.Title},
	}

	if quiz.CoverImageURL != "" {
		blocks = append(blocks, transfer.NPFBlock{
			Type:  "image",
			Media: []transfer.NPFMedia{{URL: quiz.CoverImageURL}},
		})
	}

	message := customMessage
	if message == "" {
		message = quiz.Description
	}
	if message != "" {
		blocks = append(blocks, transfer.NPFBlock{Type: "text", Text: message})
	}

	if len(quiz.Questions) > 0 {
		blocks = append(blocks, questionPreview(&quiz.Questions[0], quizURL)...)
	}

	blocks = append(blocks, transfer.NPFBlock{
		Type:        "link",
		URL:         quizURL,
		Title:       quiz.Title,
		Description: "Take this quiz on Quiz Squirrel",
	})

	if attribution != "" {
		blocks = append(blocks, transfer.NPFBlock{Type: "text", Text: attribution})
	}

	return blocks
}

const optionPrefix = "👉 "

func questionPreview(q *models.Question, quizURL string) []transfer.NPFBlock {
	blocks := []transfer.NPFBlock{
		{Type: "text", Subtype: "heading2", Text: q.Prompt},
	}

	labels := q.OptionLabels()
	if len(labels) > maxPreviewOptions {
		labels = labels[:maxPreviewOptions]
	}

	prefixLen := utf8.RuneCountInString(optionPrefix)
	for _, label := range labels {
		blocks = append(blocks, transfer.NPFBlock{
			Type: "text",
			Text: optionPrefix + label,
			Formatting: []transfer.NPFFormat{{
				Start: prefixLen,
				End:   prefixLen + utf8.RuneCountInString(label),
				Type:  "link",
				URL:   quizURL,
			}},
		})
	}

	return blocks
}

// FacebookMessage builds the single message string: lead text, truncated
// description, quiz URL, attribution.
func FacebookMessage(quiz *models.Quiz, quizURL, attribution, customMessage string) string {
	parts := make([]string, 0, 4)

	lead := customMessage
	if lead == "" {
		lead = quiz.Title
	}
	parts = append(parts, lead)

	if quiz.Description != "" && customMessage == "" {
		desc := quiz.Description
		if utf8.RuneCountInString(desc) > facebookDescLimit {
			desc = TruncateRunes(desc, facebookDescLimit) + "…"
		}
		parts = append(parts, desc)
	}

	parts = append(parts, quizURL)

	if attribution != "" {
		parts = append(parts, attribution)
	}

	return strings.Join(parts, "\n\n")
}
