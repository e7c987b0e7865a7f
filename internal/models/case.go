package models

import (
	"fmt"
	"strconv"

	"mcx-exporter/internal/common"
)

// CaseViewDocument is the getCaseView response payload: flat case attributes
// plus embedded answer lists under viewValues, and the question definitions
// under caseView.
type CaseViewDocument struct {
	ViewValues *CaseViewValues  `json:"viewValues"`
	CaseView   *CaseViewSection `json:"caseView"`
}

type CaseViewSection struct {
	CaseViewItems []CaseViewItem `json:"CaseViewItems"`
}

type CaseViewValues struct {
	CaseID                   int                    `json:"CaseId"`
	AlertName                string                 `json:"AlertName"`
	OwnerFullName            string                 `json:"OwnerFullName"`
	CaseStatusID             int                    `json:"CaseStatusId"`
	CasePriorityID           int                    `json:"CasePriorityId"`
	TimeToCloseDisplay       string                 `json:"TimeToCloseDisplay"`
	TimeToCloseGoalDisplay   string                 `json:"TimeToCloseGoalDisplay"`
	TimeToRespondDisplay     string                 `json:"TimeToRespondDisplay"`
	TimeToRespondGoalDisplay string                 `json:"TimeToRespondGoalDisplay"`
	ItemAnswers              []Answer               `json:"ItemAnswers"`
	CaseRootCauseAnswers     []RootCauseAnswer      `json:"CaseRootCauseAnswers"`
	ActivityNotes            []ActivityNoteValues   `json:"ActivityNotes"`
	SourceResponses          []SourceResponseValues `json:"SourceResponses"`
}

// ActivityNoteValues is the wire shape of one activity note.
type ActivityNoteValues struct {
	ActivityNote     string `json:"ActivityNote"`
	ActivityNoteDate string `json:"ActivityNoteDate"`
	FullName         string `json:"FullName"`
}

// SourceResponseValues is the wire shape of one freeform Q/A pair not tied
// to a case item.
type SourceResponseValues struct {
	Key   int `json:"Key"`
	Value struct {
		AnswerText   string `json:"AnswerText"`
		QuestionText string `json:"QuestionText"`
	} `json:"Value"`
}

// ActivityNote is a note left on a case by a user.
type ActivityNote struct {
	Note   string
	Date   string
	Author string
}

func (n ActivityNote) String() string {
	return fmt.Sprintf("%s @ %s: %s", n.Author, FormatMcxDate(n.Date), n.Note)
}

// SourceResponse is a freeform survey question/answer attached to a case.
type SourceResponse struct {
	CaseItemID   int
	QuestionText string
	AnswerText   string
}

// Fixed export column names.
const (
	ColCaseID            = "Case ID"
	ColOwner             = "Owner"
	ColTimeToClose       = "Time To Close"
	ColTimeToCloseGoal   = "Time to Goal Close"
	ColTimeToRespond     = "Time To Respond"
	ColTimeToRespondGoal = "Time To Goal Respond"
	ColStatus            = "Status"
	ColPriority          = "Priority"
)

// Case aggregates one case's metadata, its items with their answers, its
// activity notes, and its source responses. Built once from an immutable
// snapshot; read-only thereafter.
type Case struct {
	CaseID            int
	AlertName         string
	Owner             string
	TimeToClose       string
	TimeToCloseGoal   string
	TimeToRespond     string
	TimeToRespondGoal string
	StatusID          int
	PriorityID        int
	Status            string
	Priority          string
	Items             []*CaseItem
	ActivityNotes     []ActivityNote
	SourceResponses   []SourceResponse
}

// NewCase assembles a case from one case-view document. Order matters:
// items are built first, then answers resolve against them, then status and
// priority resolve against the typed items' dropdown catalogs.
func NewCase(doc *CaseViewDocument) (*Case, error) {
	if doc == nil || doc.ViewValues == nil || doc.CaseView == nil {
		return nil, common.NewParsingError("case_view_shape",
			"case view document missing viewValues or caseView")
	}

	v := doc.ViewValues
	if v.CaseID == 0 {
		return nil, common.NewParsingError("case_view_case_id",
			"case view document missing CaseId")
	}

	c := &Case{
		CaseID:            v.CaseID,
		AlertName:         v.AlertName,
		Owner:             v.OwnerFullName,
		TimeToClose:       v.TimeToCloseDisplay,
		TimeToCloseGoal:   v.TimeToCloseGoalDisplay,
		TimeToRespond:     v.TimeToRespondDisplay,
		TimeToRespondGoal: v.TimeToRespondGoalDisplay,
		StatusID:          v.CaseStatusID,
		PriorityID:        v.CasePriorityID,
	}

	for _, itemValues := range doc.CaseView.CaseViewItems {
		item, err := NewCaseItem(itemValues)
		if err != nil {
			if exErr, ok := err.(*common.ExporterError); ok {
				exErr.WithContext("case_id", c.CaseID)
			}
			return nil, err
		}
		c.Items = append(c.Items, item)
	}

	// Vendor views may reference items outside the visible set; those
	// answers are skipped, not errors.
	for _, answer := range v.ItemAnswers {
		item := c.findItem(answer.CaseItemID)
		if item == nil {
			continue
		}
		if err := item.AddAnswer(answer); err != nil {
			return nil, err
		}
	}

	for _, answer := range v.CaseRootCauseAnswers {
		item := c.findItem(answer.CaseItemID)
		if item == nil {
			continue
		}
		if err := item.AddRootCauseAnswer(answer); err != nil {
			return nil, err
		}
	}

	for _, note := range v.ActivityNotes {
		c.ActivityNotes = append(c.ActivityNotes, ActivityNote{
			Note:   note.ActivityNote,
			Date:   note.ActivityNoteDate,
			Author: note.FullName,
		})
	}

	for _, sr := range v.SourceResponses {
		c.SourceResponses = append(c.SourceResponses, SourceResponse{
			CaseItemID:   sr.Key,
			QuestionText: sr.Value.QuestionText,
			AnswerText:   sr.Value.AnswerText,
		})
	}

	var err error
	if c.Status, err = c.lookupTypedDropdown(QuestionTypeStatus, c.StatusID); err != nil {
		return nil, err
	}
	if c.Priority, err = c.lookupTypedDropdown(QuestionTypePriority, c.PriorityID); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Case) findItem(caseItemID int) *CaseItem {
	for _, item := range c.Items {
		if item.CaseItemID == caseItemID {
			return item
		}
	}
	return nil
}

func (c *Case) findItemByType(caseQuestionType int) *CaseItem {
	for _, item := range c.Items {
		if item.CaseQuestionType == caseQuestionType {
			return item
		}
	}
	return nil
}

// lookupTypedDropdown resolves a case-level id (status, priority) through
// the catalog of the item with the given question type. A missing item
// yields an empty value; a missing catalog entry on a present item is a
// reference error.
func (c *Case) lookupTypedDropdown(caseQuestionType, id int) (string, error) {
	item := c.findItemByType(caseQuestionType)
	if item == nil {
		return "", nil
	}
	return item.DropdownText(id)
}

// Row flattens the case for export: fixed columns first, then one column per
// item with a display answer (keyed by item label, last write wins on
// duplicate labels), then numbered activity-note columns, then one column
// per source response keyed by question text or, when that is empty, by the
// stringified item id.
func (c *Case) Row() *Row {
	row := NewRow()
	row.Set(ColCaseID, c.CaseID)
	row.Set(ColOwner, c.Owner)
	row.Set(ColTimeToClose, c.TimeToClose)
	row.Set(ColTimeToCloseGoal, c.TimeToCloseGoal)
	row.Set(ColTimeToRespond, c.TimeToRespond)
	row.Set(ColTimeToRespondGoal, c.TimeToRespondGoal)
	row.Set(ColStatus, c.Status)
	row.Set(ColPriority, c.Priority)

	for _, item := range c.Items {
		if item.HasDisplayAnswer() {
			row.Set(item.CaseItemText, item.DisplayAnswer())
		}
	}

	for i, note := range c.ActivityNotes {
		row.Set(fmt.Sprintf("Activity Note %d", i+1), note.String())
	}

	for _, sr := range c.SourceResponses {
		key := sr.QuestionText
		if key == "" {
			key = strconv.Itoa(sr.CaseItemID)
		}
		row.Set(key, sr.AnswerText)
	}

	return row
}
