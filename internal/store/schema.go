package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table names.
const (
	questionsTable = "wiki_questions"
	ratingsTable   = "wiki_question_ratings"
	eventsTable    = "llm_request_events"
)

// longText makes string columns unbounded on every dialect.
const longText = 2147483647

var (
	// QuestionsColumns holds the columns for the "wiki_questions" table.
	QuestionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "question_hash", Type: field.TypeString, Size: 64, Unique: true},
		{Name: "article_hash", Type: field.TypeString, Size: 64},
		{Name: "lang", Type: field.TypeString, Size: 16},
		{Name: "topic_title", Type: field.TypeString, Size: 512, Default: ""},
		{Name: "context_slice", Type: field.TypeString, Size: longText, Nullable: true},
		{Name: "question", Type: field.TypeString, Size: longText},
		{Name: "answers", Type: field.TypeString, Size: longText},
		{Name: "correct_index", Type: field.TypeInt},
		{Name: "model", Type: field.TypeString, Size: 64},
		{Name: "model_id", Type: field.TypeString, Size: 128, Default: ""},
		{Name: "is_removed", Type: field.TypeBool, Default: false},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// QuestionsTable holds the schema information for the "wiki_questions" table.
	QuestionsTable = &schema.Table{
		Name:       questionsTable,
		Columns:    QuestionsColumns,
		PrimaryKey: []*schema.Column{QuestionsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "wikiquestion_article_hash_lang",
				Unique:  false,
				Columns: []*schema.Column{QuestionsColumns[2], QuestionsColumns[3]},
			},
		},
	}

	// RatingsColumns holds the columns for the "wiki_question_ratings" table.
	RatingsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt64, Increment: true},
		{Name: "question_hash", Type: field.TypeString, Size: 64},
		{Name: "quality_rating", Type: field.TypeInt, Nullable: true},
		{Name: "difficulty_rating", Type: field.TypeInt, Nullable: true},
		{Name: "selected_answer", Type: field.TypeInt},
		{Name: "correct", Type: field.TypeBool},
		{Name: "model", Type: field.TypeString, Size: 64},
		{Name: "duration_ms", Type: field.TypeInt64, Nullable: true},
		{Name: "session_id", Type: field.TypeString, Size: 64, Default: ""},
		{Name: "topic_title", Type: field.TypeString, Size: 512, Default: ""},
		{Name: "created_at", Type: field.TypeInt64},
	}
	// RatingsTable holds the schema information for the "wiki_question_ratings" table.
	RatingsTable = &schema.Table{
		Name:       ratingsTable,
		Columns:    RatingsColumns,
		PrimaryKey: []*schema.Column{RatingsColumns[0]},
		Indexes: []*schema.Index{
			{
				Name:    "wikiquestionrating_question_hash",
				Unique:  false,
				Columns: []*schema.Column{RatingsColumns[1]},
			},
		},
	}

	// EventsColumns holds the columns for the "llm_request_events" table.
	EventsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt, Increment: true},
		{Name: "timestamp", Type: field.TypeInt64},
		{Name: "provider", Type: field.TypeString, Size: 64},
		{Name: "model", Type: field.TypeString, Size: 128},
		{Name: "purpose", Type: field.TypeString, Size: 64},
		{Name: "input_tokens", Type: field.TypeInt, Default: 0},
		{Name: "output_tokens", Type: field.TypeInt, Default: 0},
		{Name: "latency_ms", Type: field.TypeInt64, Default: 0},
		{Name: "success", Type: field.TypeBool},
		{Name: "error_message", Type: field.TypeString, Size: longText},
		{Name: "request_body", Type: field.TypeString, Size: longText},
		{Name: "response_body", Type: field.TypeString, Size: longText},
	}
	// EventsTable holds the schema information for the "llm_request_events" table.
	EventsTable = &schema.Table{
		Name:       eventsTable,
		Columns:    EventsColumns,
		PrimaryKey: []*schema.Column{EventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "llmrequestevent_provider", Columns: []*schema.Column{EventsColumns[2]}},
			{Name: "llmrequestevent_purpose", Columns: []*schema.Column{EventsColumns[4]}},
			{Name: "llmrequestevent_success", Columns: []*schema.Column{EventsColumns[8]}},
		},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		QuestionsTable,
		RatingsTable,
		EventsTable,
	}
)
