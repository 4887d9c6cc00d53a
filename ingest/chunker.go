package ingest

import (
	"fmt"
	"regexp"
	"strings"
)

// Default window parameters.
const (
	DefaultChunkSize    = 800
	DefaultChunkOverlap = 100
)

// Chunker splits lesson text into sentence-aligned windows. Every chunk
// carries a "Course {title} Lesson {n} content:" prefix that grounds
// retrieval results; the prefix counts toward the chunk-size budget.
type Chunker struct {
	chunkSize int
	overlap   int
}

// NewChunker validates the window parameters, falling back to defaults
// when they are unusable.
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = chunkSize / 8
	}
	return &Chunker{chunkSize: chunkSize, overlap: overlap}
}

var (
	whitespaceRe  = regexp.MustCompile(`\s+`)
	sentenceEndRe = regexp.MustCompile(`[.!?]+(?:\s+|$)`)
)

// ChunkLesson windows one lesson's text. Sentences are packed greedily
// under the budget; adjacent chunks repeat a whole-sentence tail of at
// most the overlap length. A single sentence longer than the budget is
// truncated at the hard limit. A lesson shorter than one window yields
// exactly one chunk; empty text yields none.
func (c *Chunker) ChunkLesson(courseTitle string, lessonNumber int, text string) []string {
	prefix := fmt.Sprintf("Course %s Lesson %d content: ", courseTitle, lessonNumber)
	budget := c.chunkSize - len(prefix)
	if budget < 1 {
		budget = 1
	}

	sentences := splitSentences(text)
	if len(sentences) == 0 {
		return nil
	}
	for i, s := range sentences {
		if len(s) > budget {
			sentences[i] = s[:budget]
		}
	}

	var chunks []string
	var window []string
	windowLen := 0

	emit := func() {
		chunk := prefix + strings.Join(window, " ")
		if len(chunk) > c.chunkSize {
			chunk = chunk[:c.chunkSize]
		}
		chunks = append(chunks, chunk)
	}

	for _, s := range sentences {
		addLen := len(s)
		if windowLen > 0 {
			addLen++ // joining space
		}
		if windowLen+addLen > budget && windowLen > 0 {
			emit()
			window, windowLen = c.overlapTail(window)
			// The carried tail plus the new sentence must fit; shed from
			// the front until it does so packing always advances.
			for windowLen > 0 && windowLen+1+len(s) > budget {
				drop := len(window[0])
				if len(window) > 1 {
					drop++
				}
				window = window[1:]
				windowLen -= drop
			}
			addLen = len(s)
			if windowLen > 0 {
				addLen++
			}
		}
		window = append(window, s)
		windowLen += addLen
	}
	if windowLen > 0 {
		emit()
	}
	return chunks
}

// overlapTail returns the trailing sentences whose joined length stays
// within the overlap budget, seeding the next window.
func (c *Chunker) overlapTail(window []string) ([]string, int) {
	var tail []string
	length := 0
	for i := len(window) - 1; i >= 0; i-- {
		add := len(window[i])
		if length > 0 {
			add++
		}
		if length+add > c.overlap {
			break
		}
		tail = append([]string{window[i]}, tail...)
		length += add
	}
	return tail, length
}

// splitSentences normalizes whitespace and splits on sentence
// terminators followed by whitespace.
func splitSentences(text string) []string {
	text = strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	if text == "" {
		return nil
	}
	var out []string
	prev := 0
	for _, loc := range sentenceEndRe.FindAllStringIndex(text, -1) {
		if s := strings.TrimSpace(text[prev:loc[1]]); s != "" {
			out = append(out, s)
		}
		prev = loc[1]
	}
	if s := strings.TrimSpace(text[prev:]); s != "" {
		out = append(out, s)
	}
	return out
}
