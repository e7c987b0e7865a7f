package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func caseDocumentFixture() *CaseViewDocument {
	return &CaseViewDocument{
		ViewValues: &CaseViewValues{
			CaseID:                   42,
			AlertName:                "Detractor Alert",
			OwnerFullName:            "Jo Bloggs",
			CaseStatusID:             2,
			CasePriorityID:           1,
			TimeToCloseDisplay:       "3 days",
			TimeToCloseGoalDisplay:   "5 days",
			TimeToRespondDisplay:     "4 hours",
			TimeToRespondGoalDisplay: "8 hours",
			ItemAnswers: []Answer{
				{CaseItemID: 10, TextValue: "customer called back"},
				{CaseItemID: 999, TextValue: "no such item"}, // skipped
			},
			CaseRootCauseAnswers: []RootCauseAnswer{
				{CaseItemID: 30, TreeID: "3"},
			},
			ActivityNotes: []ActivityNoteValues{
				{ActivityNote: "opened", ActivityNoteDate: "/Date(1486501766713+0100)/", FullName: "Jo Bloggs"},
				{ActivityNote: "resolved", ActivityNoteDate: "/Date(1486588166713+0100)/", FullName: "Sam Smith"},
			},
			SourceResponses: []SourceResponseValues{
				{Key: 501, Value: struct {
					AnswerText   string `json:"AnswerText"`
					QuestionText string `json:"QuestionText"`
				}{AnswerText: "9", QuestionText: "How likely are you to recommend us?"}},
				{Key: 502, Value: struct {
					AnswerText   string `json:"AnswerText"`
					QuestionText string `json:"QuestionText"`
				}{AnswerText: "fast delivery", QuestionText: ""}},
			},
		},
		CaseView: &CaseViewSection{
			CaseViewItems: []CaseViewItem{
				{
					CaseItemID:       1,
					CaseQuestionType: QuestionTypeStatus,
					CaseItemText:     "Status",
					DropdownValues: []DropdownValue{
						{ID: 1, Text: "Open"},
						{ID: 2, Text: "Closed"},
					},
				},
				{
					CaseItemID:       2,
					CaseQuestionType: QuestionTypePriority,
					CaseItemText:     "Priority",
					DropdownValues: []DropdownValue{
						{ID: 1, Text: "High"},
						{ID: 2, Text: "Low"},
					},
				},
				{
					CaseItemID:       10,
					CaseQuestionType: QuestionTypeShortTextBox,
					CaseItemText:     "Notes",
				},
				{
					CaseItemID:       30,
					CaseQuestionType: QuestionTypeRootCause,
					CaseItemText:     "Root Cause",
					RootCauseValues:  taxonomyFixture(),
				},
			},
		},
	}
}

func TestNewCase(t *testing.T) {
	c, err := NewCase(caseDocumentFixture())
	require.NoError(t, err)

	assert.Equal(t, 42, c.CaseID)
	assert.Equal(t, "Jo Bloggs", c.Owner)
	assert.Equal(t, "Closed", c.Status)
	assert.Equal(t, "High", c.Priority)
	assert.Len(t, c.Items, 4)
	assert.Len(t, c.ActivityNotes, 2)
	assert.Len(t, c.SourceResponses, 2)
}

func TestNewCaseMissingSections(t *testing.T) {
	_, err := NewCase(nil)
	require.Error(t, err)

	_, err = NewCase(&CaseViewDocument{ViewValues: &CaseViewValues{CaseID: 1}})
	require.Error(t, err)

	_, err = NewCase(&CaseViewDocument{CaseView: &CaseViewSection{}})
	require.Error(t, err)
}

func TestNewCaseMissingCaseID(t *testing.T) {
	doc := caseDocumentFixture()
	doc.ViewValues.CaseID = 0

	_, err := NewCase(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CaseId")
}

func TestNewCaseStatusItemAbsent(t *testing.T) {
	doc := caseDocumentFixture()
	doc.CaseView.CaseViewItems = doc.CaseView.CaseViewItems[1:] // drop the status item

	c, err := NewCase(doc)
	require.NoError(t, err)
	assert.Equal(t, "", c.Status)
	assert.Equal(t, "High", c.Priority)
}

func TestNewCaseStatusIDNotInCatalog(t *testing.T) {
	doc := caseDocumentFixture()
	doc.ViewValues.CaseStatusID = 7

	_, err := NewCase(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in catalog")
}

func TestNewCaseUnknownDropdownAnswer(t *testing.T) {
	doc := caseDocumentFixture()
	doc.CaseView.CaseViewItems = append(doc.CaseView.CaseViewItems, CaseViewItem{
		CaseItemID:       50,
		CaseQuestionType: QuestionTypeDropdown,
		CaseItemText:     "Region",
		DropdownValues:   []DropdownValue{{ID: 1, Text: "North"}},
	})
	doc.ViewValues.ItemAnswers = append(doc.ViewValues.ItemAnswers, Answer{CaseItemID: 50, IntValue: 999})

	_, err := NewCase(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in catalog")
}

func TestNewCaseUnknownRootCauseAnswer(t *testing.T) {
	doc := caseDocumentFixture()
	doc.ViewValues.CaseRootCauseAnswers = append(doc.ViewValues.CaseRootCauseAnswers,
		RootCauseAnswer{CaseItemID: 30, TreeID: "99"})

	_, err := NewCase(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown tree id")
}

func TestCaseRow(t *testing.T) {
	c, err := NewCase(caseDocumentFixture())
	require.NoError(t, err)

	row := c.Row()

	expected := []string{
		ColCaseID, ColOwner,
		ColTimeToClose, ColTimeToCloseGoal,
		ColTimeToRespond, ColTimeToRespondGoal,
		ColStatus, ColPriority,
		"Notes", "Root Cause",
		"Activity Note 1", "Activity Note 2",
		"How likely are you to recommend us?", "502",
	}
	assert.Equal(t, expected, row.Fields())

	assert.Equal(t, 42, row.Value(ColCaseID))
	assert.Equal(t, "Closed", row.Value(ColStatus))
	assert.Equal(t, "High", row.Value(ColPriority))
	assert.Equal(t, "customer called back", row.Value("Notes"))
	assert.Equal(t, "Product > Quality > Defect", row.Value("Root Cause"))
	assert.Equal(t, "Jo Bloggs @ 2017-02-07 22:09+0100: opened", row.Value("Activity Note 1"))
	assert.Equal(t, "Sam Smith @ 2017-02-08 22:09+0100: resolved", row.Value("Activity Note 2"))
	assert.Equal(t, "9", row.Value("How likely are you to recommend us?"))
	assert.Equal(t, "fast delivery", row.Value("502"))
}

func TestCaseRowDuplicateItemLabel(t *testing.T) {
	doc := caseDocumentFixture()
	doc.CaseView.CaseViewItems = append(doc.CaseView.CaseViewItems, CaseViewItem{
		CaseItemID:       11,
		CaseQuestionType: QuestionTypeLongTextBox,
		CaseItemText:     "Notes",
	})
	doc.ViewValues.ItemAnswers = append(doc.ViewValues.ItemAnswers,
		Answer{CaseItemID: 11, TextValue: "second notes field"})

	c, err := NewCase(doc)
	require.NoError(t, err)

	// Duplicate labels collapse to one column; last write wins, position
	// stays at first appearance.
	row := c.Row()
	assert.Equal(t, "second notes field", row.Value("Notes"))

	count := 0
	for _, name := range row.Fields() {
		if name == "Notes" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestCaseRowEmptyItemsContributeNoColumns(t *testing.T) {
	doc := caseDocumentFixture()
	doc.CaseView.CaseViewItems = append(doc.CaseView.CaseViewItems, CaseViewItem{
		CaseItemID:       60,
		CaseQuestionType: QuestionTypeShortTextBox,
		CaseItemText:     "Unanswered",
	})

	c, err := NewCase(doc)
	require.NoError(t, err)

	_, ok := c.Row().Get("Unanswered")
	assert.False(t, ok)
}
