package certificate

import (
	"bytes"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/google/uuid"

	"event_management/internal/domain"
)

type Data struct {
	CertificateID   uuid.UUID
	ParticipantName string
	Event           *domain.Event
	IssuedAt        time.Time
}

type Renderer struct {
	issuer string
	loc    *time.Location
}

func NewRenderer(issuer string, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{issuer: issuer, loc: loc}
}

// Render draws a landscape A4 certificate and returns the PDF bytes.
func (r *Renderer) Render(d Data) ([]byte, error) {
	if d.Event == nil {
		return nil, fmt.Errorf("render certificate: missing event")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetTitle("Certificate of Participation", true)
	pdf.SetAuthor(r.issuer, true)
	pdf.SetCreationDate(d.IssuedAt)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.AddPage()
	w, h := pdf.GetPageSize()

	pdf.SetDrawColor(30, 60, 110)
	pdf.SetLineWidth(2)
	pdf.Rect(10, 10, w-20, h-20, "D")
	pdf.SetLineWidth(0.5)
	pdf.Rect(15, 15, w-30, h-30, "D")

	pdf.SetY(40)
	pdf.SetTextColor(30, 60, 110)
	pdf.SetFont("Helvetica", "B", 32)
	pdf.CellFormat(0, 14, "Certificate of Participation", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetTextColor(40, 40, 40)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, "This certifies that", "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 26)
	pdf.CellFormat(0, 12, tr(d.ParticipantName), "", 1, "C", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "", 14)
	pdf.CellFormat(0, 8, tr("attended the "+d.Event.EventType), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, tr(d.Event.Title), "", 1, "C", false, 0, "")

	pdf.SetFont("Helvetica", "", 13)
	pdf.CellFormat(0, 8, tr(dateRange(d.Event)+" - "+d.Event.Location), "", 1, "C", false, 0, "")

	sigY := h - 55
	pdf.SetLineWidth(0.3)
	pdf.Line(w/2-45, sigY, w/2+45, sigY)
	pdf.SetXY(w/2-45, sigY+2)
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(90, 6, tr(r.issuer), "", 1, "C", false, 0, "")

	pdf.SetXY(20, h-30)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.SetTextColor(110, 110, 110)
	issued := d.IssuedAt.In(r.loc).Format("2006-01-02 15:04 MST")
	pdf.CellFormat(0, 5, fmt.Sprintf("Issued %s - certificate %s", issued, d.CertificateID), "", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render certificate: %w", err)
	}
	return buf.Bytes(), nil
}

func dateRange(e *domain.Event) string {
	start := e.StartDate.Format("January 2, 2006")
	if e.EndDate.Equal(e.StartDate) {
		return fmt.Sprintf("%s, %s-%s", start, e.StartTime, e.EndTime)
	}
	return fmt.Sprintf("%s to %s", start, e.EndDate.Format("January 2, 2006"))
}
