package chunker

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/DocRagAPI/internal/config"
	"github.com/akolanti/DocRagAPI/internal/domain/ragModel"
)

var (
	markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\([^)]+\)`)
	hyphenBreakRe   = regexp.MustCompile(`(\w)-\s*\n\s*(\w)`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
	sentenceEndRe   = regexp.MustCompile(`([.!?…])\s+`)
)

// normalize strips markdown image references, rejoins words hyphenated across
// line breaks and collapses all whitespace runs to single spaces.
func normalize(text string) string {
	text = markdownImageRe.ReplaceAllString(text, "")
	text = hyphenBreakRe.ReplaceAllString(text, "$1$2")
	text = whitespaceRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// splitSentences cuts normalized text after terminal punctuation followed by
// whitespace. The punctuation stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	last := 0
	for _, m := range sentenceEndRe.FindAllStringSubmatchIndex(text, -1) {
		end := m[3] //just past the punctuation mark
		if s := strings.TrimSpace(text[last:end]); s != "" {
			sentences = append(sentences, s)
		}
		last = m[1]
	}
	if s := strings.TrimSpace(text[last:]); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// chunkText packs sentences greedily into chunks of at most maxChars,
// carrying a tail of overlap characters into the next chunk. The tail is
// always kept, so a chunk whose first sentence alone exceeds the cap is
// emitted oversized rather than split or stripped of its overlap.
func chunkText(text string, maxChars int, overlap int) []string {
	text = normalize(text)
	if text == "" {
		return nil
	}
	//tiny pages skip sentence splitting entirely
	if len(text) <= config.TinyPageThreshold || len(text) <= maxChars {
		return []string{text}
	}

	sentences := splitSentences(text)
	var chunks []string
	var current []string
	currentLen := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		joined := strings.Join(current, " ")
		chunks = append(chunks, joined)

		//seed the next chunk with the trailing overlap characters
		tail := tailRunes(joined, overlap)
		if tail == "" {
			current = nil
			currentLen = 0
			return
		}
		current = []string{tail}
		currentLen = len(tail)
	}

	for _, sentence := range sentences {
		addLen := len(sentence)
		if currentLen > 0 {
			addLen++ //joining space
		}
		if currentLen+addLen > maxChars && currentLen > 0 {
			flush()
			addLen = len(sentence)
			if currentLen > 0 {
				addLen++
			}
		}
		current = append(current, sentence)
		currentLen += addLen
	}
	if len(current) > 0 {
		last := strings.Join(current, " ")
		//skip a final chunk that is pure overlap already emitted
		if len(chunks) == 0 || !strings.HasSuffix(chunks[len(chunks)-1], last) {
			chunks = append(chunks, last)
		}
	}
	return chunks
}

// tailRunes returns the last n bytes of s, backed up to a rune boundary so
// the overlap never starts mid-character.
func tailRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	start := len(s) - n
	for start < len(s) && !utf8.RuneStart(s[start]) {
		start++
	}
	return s[start:]
}

// BuildChunks turns parsed pages into retrievable chunks. Bracketed metadata
// tokens are appended after each chunk text so the lexical index can match on
// filename and title, and every chunk carries a source locator of the form
// "filename#p<page>#<idx>" (or "file#<file_id>#p<page>#<idx>" when the
// filename is empty).
func BuildChunks(pages []ragModel.Page, fileID string, filename string, title string, maxChars int, overlap int) []ragModel.Chunk {
	var out []ragModel.Chunk
	for _, page := range pages {
		pageNum := page.Number
		if pageNum <= 0 {
			pageNum = 1
		}
		for idx, text := range chunkText(page.Text, maxChars, overlap) {
			var source string
			if filename != "" {
				source = fmt.Sprintf("%s#p%d#%d", filename, pageNum, idx)
			} else {
				source = fmt.Sprintf("file#%s#p%d#%d", fileID, pageNum, idx)
			}
			out = append(out, ragModel.Chunk{
				FileID:   fileID,
				Filename: filename,
				Title:    title,
				Page:     pageNum,
				ChunkIdx: idx,
				Source:   source,
				Text:     text + metadataSuffix(filename, pageNum, fileID, title),
			})
		}
	}
	return out
}

// metadataSuffix renders the bracketed key:value tokens, in a fixed order,
// skipping empty values. The leading space separates them from the chunk text.
func metadataSuffix(filename string, pageNum int, fileID string, title string) string {
	var tokens []string
	add := func(key, value string) {
		if value == "" {
			return
		}
		tokens = append(tokens, "["+key+":"+value+"]")
	}
	add("filename", filename)
	add("page_number", fmt.Sprintf("%d", pageNum))
	add("file_id", fileID)
	add("title", title)
	if len(tokens) == 0 {
		return ""
	}
	return " " + strings.Join(tokens, " ")
}
