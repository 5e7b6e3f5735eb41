package qa

import (
	"context"
	"time"

	"docbase-backend/internal/documents"
	"docbase-backend/internal/shared/telemetry"
	"docbase-backend/internal/users"
)

const topResults = 5

// DocumentSnippet is one answer candidate.
type DocumentSnippet struct {
	DocumentID string    `json:"documentId"`
	Title      string    `json:"title"`
	Snippet    string    `json:"snippet"`
	AuthorName string    `json:"authorName"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Response carries the question back with its snippets.
type Response struct {
	Question     string            `json:"question"`
	Snippets     []DocumentSnippet `json:"snippets"`
	TotalResults int64             `json:"totalResults"`
}

// Service answers questions by keyword search over indexed documents.
type Service struct {
	Docs  *documents.Service
	Users users.Repo
}

// Ask runs the question as a keyword search and builds a snippet for each of
// the top matches. Documents without extracted text fall back to their
// description verbatim.
func (s *Service) Ask(ctx context.Context, question string) (Response, error) {
	page, err := s.Docs.SearchKeyword(ctx, question, 0, topResults, documents.DefaultSort)
	if err != nil {
		return Response{}, err
	}

	authorNames := make(map[string]string)
	snippets := make([]DocumentSnippet, 0, len(page.Items))
	for _, doc := range page.Items {
		text := doc.Description
		if doc.ContentText != nil {
			text = Snippet(*doc.ContentText, question)
		}
		snippets = append(snippets, DocumentSnippet{
			DocumentID: doc.ID,
			Title:      doc.Title,
			Snippet:    text,
			AuthorName: s.authorName(ctx, authorNames, doc.AuthorID),
			CreatedAt:  doc.CreatedAt,
		})
	}

	telemetry.Info("qa.question_answered", map[string]any{
		"question_len": len(question),
		"results":      page.TotalCount,
	})

	return Response{
		Question:     question,
		Snippets:     snippets,
		TotalResults: page.TotalCount,
	}, nil
}

// Recent pages documents by creation time, newest first.
func (s *Service) Recent(ctx context.Context, page, size int) (documents.Page, error) {
	return s.Docs.List(ctx, page, size, documents.DefaultSort)
}

func (s *Service) authorName(ctx context.Context, memo map[string]string, authorID string) string {
	if name, ok := memo[authorID]; ok {
		return name
	}
	author, err := s.Users.GetByID(ctx, authorID)
	if err != nil {
		memo[authorID] = ""
		return ""
	}
	memo[authorID] = author.Username
	return author.Username
}
