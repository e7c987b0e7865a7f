package models

import (
	"fmt"

	"mcx-exporter/internal/common"
)

// Case question type ids assigned by the vendor. The type selects how an
// item's answer is interpreted; most of these carry no free-text or choice
// component at all (dividers, computed columns, labels).
const (
	QuestionTypeCaseID          = 1
	QuestionTypeProgramName     = 2
	QuestionTypeCreatedDate     = 3
	QuestionTypeStatus          = 4
	QuestionTypePriority        = 5
	QuestionTypeRootCause       = 6
	QuestionTypeActivityNotes   = 7
	QuestionTypeOwner           = 9
	QuestionTypeAlertName       = 10
	QuestionTypeShortTextBox    = 11
	QuestionTypeLongTextBox     = 12
	QuestionTypeDropdown        = 13
	QuestionTypeSurveyExcerpt   = 15
	QuestionTypeClosedDate      = 16
	QuestionTypeSurveyName      = 17
	QuestionTypeTimeToRespond   = 18
	QuestionTypeTimeToClose     = 19
	QuestionTypeExplanationText = 20
	QuestionTypeDivider         = 21
	QuestionTypeWatchers        = 22
	QuestionTypeLastModified    = 25
	QuestionTypeDatePicker      = 26
	QuestionTypeNumeric         = 27
)

// DropdownValue is one catalog entry mapping a numeric answer id to its
// display text.
type DropdownValue struct {
	ID   int    `json:"Id"`
	Text string `json:"Text"`
}

// CaseViewItem is the wire shape of one question definition on a case.
type CaseViewItem struct {
	CaseItemID       int              `json:"CaseItemId"`
	CaseQuestionType int              `json:"CaseQuestionTypeId"`
	CaseItemText     string           `json:"CaseItemText"`
	DropdownValues   []DropdownValue  `json:"DropdownValues"`
	RootCauseValues  []RootCauseValue `json:"RootCauseValues"`
}

// CaseItem is one question on a case. It owns its dropdown catalog and
// root-cause tree, and holds at most one plain answer plus zero or more
// root-cause answers.
type CaseItem struct {
	CaseItemID       int
	CaseQuestionType int
	CaseItemText     string

	dropdowns        map[int]string
	tree             *RootCauseTree
	answer           *Answer
	rootCauseAnswers []RootCauseAnswer
}

// NewCaseItem builds an item from its wire definition, including its
// dropdown catalog and root-cause tree.
func NewCaseItem(v CaseViewItem) (*CaseItem, error) {
	tree, err := NewRootCauseTree(v.RootCauseValues)
	if err != nil {
		if exErr, ok := err.(*common.ExporterError); ok {
			exErr.WithContext("case_item_id", v.CaseItemID)
		}
		return nil, err
	}

	dropdowns := make(map[int]string, len(v.DropdownValues))
	for _, d := range v.DropdownValues {
		dropdowns[d.ID] = d.Text
	}

	return &CaseItem{
		CaseItemID:       v.CaseItemID,
		CaseQuestionType: v.CaseQuestionType,
		CaseItemText:     v.CaseItemText,
		dropdowns:        dropdowns,
		tree:             tree,
	}, nil
}

// Tree returns the item's root-cause taxonomy.
func (it *CaseItem) Tree() *RootCauseTree {
	return it.tree
}

// DropdownText resolves a catalog id to its display text. An id absent from
// the catalog of a known item is a data integrity error.
func (it *CaseItem) DropdownText(id int) (string, error) {
	text, ok := it.dropdowns[id]
	if !ok {
		return "", common.NewReferenceError("dropdown_value_missing",
			fmt.Sprintf("dropdown id %d not in catalog of case item %d", id, it.CaseItemID)).
			WithContext("case_item_id", it.CaseItemID).
			WithContext("dropdown_id", id)
	}
	return text, nil
}

// AddAnswer records the item's single answer. Dropdown references are
// resolved eagerly so that malformed vendor data fails at assembly time
// rather than at export time.
func (it *CaseItem) AddAnswer(a Answer) error {
	if it.CaseQuestionType == QuestionTypeDropdown && !a.IsEmpty {
		if _, err := it.DropdownText(a.IntValue); err != nil {
			return err
		}
	}
	it.answer = &a
	return nil
}

// AddRootCauseAnswer appends a taxonomy selection, resolving its tree id
// eagerly. Unknown tree ids fail the owning case's construction.
func (it *CaseItem) AddRootCauseAnswer(a RootCauseAnswer) error {
	if _, ok := it.tree.Node(a.TreeID); !ok {
		return common.NewReferenceError("root_cause_answer_missing",
			fmt.Sprintf("root cause answer references unknown tree id %q on case item %d", a.TreeID, it.CaseItemID)).
			WithContext("case_item_id", it.CaseItemID).
			WithContext("tree_id", a.TreeID)
	}
	it.rootCauseAnswers = append(it.rootCauseAnswers, a)
	return nil
}

// RootCauseAnswers returns the selections accumulated so far, in input order.
func (it *CaseItem) RootCauseAnswers() []RootCauseAnswer {
	return it.rootCauseAnswers
}

// DisplayAnswer derives the single human-readable answer value on read.
// Root-cause answers take precedence over the plain answer; an empty answer
// always displays as ""; numeric answers stay numeric. Question types
// without a free-text or choice component derive no value here.
func (it *CaseItem) DisplayAnswer() interface{} {
	if len(it.rootCauseAnswers) > 0 {
		return it.tree.RenderAnswers(it.rootCauseAnswers)
	}

	if it.answer == nil || it.answer.IsEmpty {
		return ""
	}

	switch it.CaseQuestionType {
	case QuestionTypeShortTextBox, QuestionTypeLongTextBox, QuestionTypeDatePicker:
		return it.answer.TextValue
	case QuestionTypeNumeric:
		return it.answer.DoubleValue
	case QuestionTypeDropdown:
		// Validated by AddAnswer.
		text, err := it.DropdownText(it.answer.IntValue)
		if err != nil {
			return ""
		}
		return text
	}

	return ""
}

// HasDisplayAnswer reports whether the item contributes a column to the
// flattened case: a non-empty display string, or any numeric answer.
func (it *CaseItem) HasDisplayAnswer() bool {
	switch v := it.DisplayAnswer().(type) {
	case string:
		return v != ""
	case float64:
		return true
	}
	return false
}
