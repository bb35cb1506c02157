// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/danielhkuo/classroom-vote/models"
)

// Sheet names, in workbook order
const (
	SheetTallies  = "Tallies"
	SheetBallots  = "Ballots"
	SheetFeedback = "Feedback"
)

const timeLayout = "2006-01-02 15:04:05"

// Workbook builds a spreadsheet from an admin snapshot and the feedback log.
// The caller must Close the returned file.
func Workbook(report models.Report, feedback []models.FeedbackView) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetTallies); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	for _, name := range []string{SheetBallots, SheetFeedback} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to add sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetTallies, tallyRows(report.Tallies)},
		{SheetBallots, ballotRows(report.Ballots)},
		{SheetFeedback, feedbackRows(feedback)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			f.Close()
			return nil, err
		}
	}

	f.SetActiveSheet(0)
	return f, nil
}

// WriteWorkbook renders the workbook to w.
func WriteWorkbook(w io.Writer, report models.Report, feedback []models.FeedbackView) error {
	f, err := Workbook(report, feedback)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return fmt.Errorf("failed to style %s header: %w", sheet, err)
	}
	if len(rows) > 0 {
		last, err := excelize.ColumnNumberToName(len(rows[0]))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, "A", last, 18); err != nil {
			return fmt.Errorf("failed to size %s columns: %w", sheet, err)
		}
	}
	return nil
}

func tallyRows(tallies []models.GroupTally) [][]interface{} {
	rows := [][]interface{}{{"Group ID", "Group", "Teacher", "Lab", "Votes"}}
	for _, t := range tallies {
		rows = append(rows, []interface{}{t.GroupID, t.GroupName, t.Teacher, t.LabNumber, t.Votes})
	}
	return rows
}

func ballotRows(ballots []models.StudentBallot) [][]interface{} {
	header := []interface{}{"Student ID", "Name", "Class", "Confirmed"}
	for i := 1; i <= models.MaxVotes; i++ {
		header = append(header, fmt.Sprintf("Vote %d", i))
	}
	header = append(header, "Vote Time")

	rows := [][]interface{}{header}
	for _, b := range ballots {
		confirmed := "no"
		if b.Locked {
			confirmed = "yes"
		}
		row := []interface{}{b.StudentID, b.Name, b.Class, confirmed}
		var last string
		for i := 0; i < models.MaxVotes; i++ {
			if i < len(b.Votes) {
				row = append(row, b.Votes[i].GroupName)
				last = b.Votes[i].VoteTime.Format(timeLayout)
			} else {
				row = append(row, "")
			}
		}
		rows = append(rows, append(row, last))
	}
	return rows
}

func feedbackRows(feedback []models.FeedbackView) [][]interface{} {
	rows := [][]interface{}{{"Student ID", "Name", "Group", "Date", "Time", "Feedback", "Submitted"}}
	for _, fb := range feedback {
		rows = append(rows, []interface{}{
			fb.StudentID, fb.StudentName, fb.GroupName,
			fb.FeedbackDate, fb.FeedbackTime, fb.Feedback,
			fb.CreatedAt.Format(timeLayout),
		})
	}
	return rows
}
