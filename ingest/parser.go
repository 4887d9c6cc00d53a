// Package ingest turns raw course documents into catalog records and
// searchable chunks.
package ingest

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
)

// LessonText is one parsed lesson plus its raw content.
type LessonText struct {
	db.LessonModel
	Text string
}

// Document is a parsed course document: the course preamble plus its
// lessons in file order.
type Document struct {
	Title      string
	Link       string
	Instructor string
	Lessons    []LessonText
}

var lessonHeaderRe = regexp.MustCompile(`^Lesson\s+(\d+):\s*(.*)$`)

// ParseDocument parses the fixed header grammar:
//
//	Course Title: <title>
//	Course Link: <url>
//	Course Instructor: <name>
//	Lesson <n>: <title>
//	Lesson Link: <url>
//	<content...>
//
// Optional fields stay unset when missing. A document without a course
// title falls back to the file name; a document with no lesson headers
// parses to a zero-lesson course, which the caller reports as a
// degraded outcome rather than failing the batch.
func ParseDocument(raw, fileName string) *Document {
	doc := &Document{}
	lines := strings.Split(raw, "\n")

	i := 0
	// Preamble: everything before the first lesson header.
	for ; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if lessonHeaderRe.MatchString(line) {
			break
		}
		switch {
		case strings.HasPrefix(line, "Course Title:"):
			doc.Title = strings.TrimSpace(strings.TrimPrefix(line, "Course Title:"))
		case strings.HasPrefix(line, "Course Link:"):
			doc.Link = strings.TrimSpace(strings.TrimPrefix(line, "Course Link:"))
		case strings.HasPrefix(line, "Course Instructor:"):
			doc.Instructor = strings.TrimSpace(strings.TrimPrefix(line, "Course Instructor:"))
		}
	}
	if doc.Title == "" {
		base := filepath.Base(fileName)
		doc.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}

	// Lesson sections.
	for i < len(lines) {
		m := lessonHeaderRe.FindStringSubmatch(strings.TrimSpace(lines[i]))
		if m == nil {
			i++
			continue
		}
		number, _ := strconv.Atoi(m[1])
		lesson := LessonText{LessonModel: db.LessonModel{Number: number, Title: strings.TrimSpace(m[2])}}
		i++

		// Optional link on the line right after the header.
		if i < len(lines) {
			next := strings.TrimSpace(lines[i])
			if strings.HasPrefix(next, "Lesson Link:") {
				lesson.Link = strings.TrimSpace(strings.TrimPrefix(next, "Lesson Link:"))
				i++
			}
		}

		var body []string
		for i < len(lines) && !lessonHeaderRe.MatchString(strings.TrimSpace(lines[i])) {
			body = append(body, lines[i])
			i++
		}
		lesson.Text = strings.TrimSpace(strings.Join(body, "\n"))
		doc.Lessons = append(doc.Lessons, lesson)
	}

	return doc
}
