package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"

	"github.com/kyamadi/ai-chat-service/internal/interfaces"
	"github.com/kyamadi/ai-chat-service/internal/models"
)

// Service renders a project's conversation transcript as a PDF,
// including the sources cited by each assistant turn.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

// NewService creates the export service
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// ExportProjectPDF builds a transcript PDF for the project
func (s *Service) ExportProjectPDF(ctx context.Context, projectID string) ([]byte, error) {
	project, err := s.storage.ProjectStorage().GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	messages, err := s.storage.MessageStorage().GetMessagesByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.MultiCell(0, 8, project.Name, "", "L", false)
	pdf.SetFont("Arial", "", 9)
	pdf.SetTextColor(120, 120, 120)
	pdf.MultiCell(0, 5, fmt.Sprintf("Exported %s", time.Now().Format("2006-01-02 15:04")), "", "L", false)
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(4)

	for _, message := range messages {
		s.writeMessage(ctx, pdf, message)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF output: %w", err)
	}

	s.logger.Debug().
		Str("project_id", projectID).
		Int("messages", len(messages)).
		Int("pdf_size", buf.Len()).
		Msg("Project transcript exported")

	return buf.Bytes(), nil
}

func (s *Service) writeMessage(ctx context.Context, pdf *fpdf.Fpdf, message *models.Message) {
	label := "You"
	if message.Role == models.MessageRoleAssistant {
		label = "Assistant"
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.MultiCell(0, 6, fmt.Sprintf("%s  (%s)", label, message.CreatedAt.Format("2006-01-02 15:04")), "", "L", false)

	pdf.SetFont("Arial", "", 10)
	pdf.MultiCell(0, 5, message.Content, "", "L", false)

	if len(message.ArticleIDs) > 0 {
		articles, err := s.storage.ArticleStorage().GetArticles(ctx, message.ArticleIDs)
		if err != nil {
			s.logger.Warn().Err(err).Str("message_id", message.ID).Msg("Failed to load cited articles for export")
		} else if len(articles) > 0 {
			pdf.Ln(1)
			pdf.SetFont("Arial", "I", 8)
			pdf.SetTextColor(90, 90, 90)
			pdf.MultiCell(0, 4, "Sources:", "", "L", false)
			for _, article := range articles {
				pdf.MultiCell(0, 4, fmt.Sprintf("- %s (%s)", article.Title, article.URL), "", "L", false)
			}
			pdf.SetTextColor(0, 0, 0)
		}
	}

	pdf.Ln(4)
}
