package models

// Answer is one submitted response to a case question. All value fields are
// present on the wire regardless of the owning item's question type; the
// item's CaseQuestionTypeId selects which one is meaningful. IsEmpty means
// the respondent gave no answer and overrides kind-based interpretation.
type Answer struct {
	CaseItemAnswerID int     `json:"CaseItemAnswerId"`
	CaseItemID       int     `json:"CaseItemId"`
	CaseQuestionType int     `json:"CaseQuestionTypeId"`
	IsEmpty          bool    `json:"IsEmpty"`
	BoolValue        bool    `json:"BoolValue"`
	DoubleValue      float64 `json:"DoubleValue"`
	IntValue         int     `json:"IntValue"`
	TextValue        string  `json:"TextValue"`
	TimeValue        string  `json:"TimeValue"`
}

// RootCauseAnswer links an item's answered taxonomy selection to a node in
// that item's root-cause tree by TreeId.
type RootCauseAnswer struct {
	CaseItemID      int    `json:"CaseItemId"`
	CaseRootCauseID int    `json:"CaseRootCauseId"`
	TreeID          string `json:"TreeId"`
}
