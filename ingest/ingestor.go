package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/SaiNageswarS/go-api-boot/logger"
	"github.com/SaiNageswarS/go-collection-boot/async"
	"github.com/SaiNageswarS/go-collection-boot/ds"
	"go.uber.org/zap"

	"github.com/sachin-patro/starting-ragchatbot-codebase/db"
)

// Ingestor runs the document-to-index pipeline: parse, chunk, embed,
// upsert. Dedup by existing catalog title is applied here, on the
// caller side of the index, as a policy rather than an index invariant.
type Ingestor struct {
	store   db.Store
	chunker *Chunker
}

func NewIngestor(store db.Store, chunker *Chunker) *Ingestor {
	return &Ingestor{store: store, chunker: chunker}
}

// AddCourseFolder ingests every .txt document under dir, skipping
// courses whose title is already in the catalog. Returns the number of
// courses and chunks added. Malformed documents degrade to zero-lesson
// courses instead of aborting the batch.
func (in *Ingestor) AddCourseFolder(ctx context.Context, dir string) (int, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0, fmt.Errorf("read docs folder: %w", err)
	}

	titles, err := in.store.ExistingCourseTitles(ctx)
	if err != nil {
		return 0, 0, err
	}
	existing := ds.NewSet[string]()
	for _, t := range titles {
		existing.Add(t)
	}

	coursesAdded, chunksAdded := 0, 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".txt") {
			continue
		}
		path := filepath.Join(dir, entry.Name())

		data, err := os.ReadFile(path)
		if err != nil {
			return coursesAdded, chunksAdded, fmt.Errorf("read document %s: %w", path, err)
		}
		doc := ParseDocument(string(data), path)
		if existing.Contains(doc.Title) {
			logger.Info("Skipping existing course", zap.String("title", doc.Title))
			continue
		}
		if len(doc.Lessons) == 0 {
			logger.Log.Warn("Document parsed with zero lessons",
				zap.String("path", path), zap.String("title", doc.Title))
		}

		n, err := in.IndexDocument(ctx, doc)
		if err != nil {
			return coursesAdded, chunksAdded, err
		}
		existing.Add(doc.Title)
		coursesAdded++
		chunksAdded += n
	}

	logger.Info("Course folder ingested",
		zap.String("dir", dir),
		zap.Int("courses", coursesAdded),
		zap.Int("chunks", chunksAdded))
	return coursesAdded, chunksAdded, nil
}

// IndexDocument chunks one parsed document and writes its catalog
// record and content chunks to the dual index. Returns the chunk count.
func (in *Ingestor) IndexDocument(ctx context.Context, doc *Document) (int, error) {
	course := &db.CourseCatalogModel{
		Title:      doc.Title,
		Instructor: doc.Instructor,
		Link:       doc.Link,
		Lessons:    make([]db.LessonModel, 0, len(doc.Lessons)),
	}
	var chunks []db.ChunkModel
	idx := 0
	for _, lesson := range doc.Lessons {
		course.Lessons = append(course.Lessons, lesson.LessonModel)
		for _, text := range in.chunker.ChunkLesson(doc.Title, lesson.Number, lesson.Text) {
			chunks = append(chunks, db.ChunkModel{
				ChunkID:      fmt.Sprintf("%s::%d", doc.Title, idx),
				CourseTitle:  doc.Title,
				LessonNumber: lesson.Number,
				ChunkIndex:   idx,
				Text:         text,
			})
			idx++
		}
	}

	// Catalog record and content chunks embed independently; run both
	// upserts in parallel.
	courseTask := async.Go(func() (int, error) {
		return 0, in.store.UpsertCourse(ctx, course)
	})
	chunkTask := async.Go(func() (int, error) {
		return len(chunks), in.store.UpsertChunks(ctx, chunks)
	})

	if _, err := async.Await(courseTask); err != nil {
		return 0, err
	}
	n, err := async.Await(chunkTask)
	if err != nil {
		return 0, err
	}

	logger.Info("Course ingested", zap.String("title", doc.Title), zap.Int("chunks", n))
	return n, nil
}
