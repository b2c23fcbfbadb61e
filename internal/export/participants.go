package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"event_management/internal/domain"
)

const participantsSheet = "Participants"

var participantHeader = []any{"#", "Username", "Full name", "Email", "Role", "Registered at"}

// Participants writes the participant list of one event as an XLSX workbook.
func Participants(event *domain.Event, participants []domain.Participant) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", participantsSheet); err != nil {
		return nil, err
	}

	title := fmt.Sprintf("%s (%s) - %d/%d registered",
		event.Title, event.StartDate.Format(domain.DateLayout), len(participants), event.Capacity)
	if err := f.SetCellValue(participantsSheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetSheetRow(participantsSheet, "A3", &participantHeader); err != nil {
		return nil, err
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(participantsSheet, "A1", "F3", bold); err != nil {
		return nil, err
	}

	for i, p := range participants {
		cell, err := excelize.CoordinatesToCellName(1, i+4)
		if err != nil {
			return nil, err
		}
		row := []any{i + 1, p.Username, p.FullName, p.Email, p.Role, p.RegisteredAt.UTC().Format("2006-01-02 15:04:05")}
		if err := f.SetSheetRow(participantsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	if err := f.SetColWidth(participantsSheet, "B", "F", 24); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
