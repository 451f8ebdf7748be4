package storage

import "time"

// TableNames holds the physical names of the historian tables. The aggregate
// names are derived from the topics/meta names by ReadTablenamesFromDB and
// are empty until aggregate support is initialized.
type TableNames struct {
	Data      string
	Topics    string
	Meta      string
	AggTopics string
	AggMeta   string
}

// DefaultTableNames returns the conventional table names used when no
// registry or config overrides them.
func DefaultTableNames() TableNames {
	return TableNames{Data: "data", Topics: "topics", Meta: "meta"}
}

// TableDefinitions is the logical table assignment recorded in the name
// registry. Prefix, when set, is prepended (with an underscore) to every
// physical name derived from the registry.
type TableDefinitions struct {
	Data   string
	Topics string
	Meta   string
	Prefix string
}

// Registry keys. The shared prefix is stored under a reserved empty key so
// it can never collide with a table role.
const (
	keyDataTable   = "data_table"
	keyTopicsTable = "topics_table"
	keyMetaTable   = "meta_table"
	keyPrefix      = ""
)

// Order controls the timestamp ordering of range query results.
type Order string

const (
	FirstToLast Order = "FIRST_TO_LAST"
	LastToFirst Order = "LAST_TO_FIRST"
)

// QueryOptions narrows a range query. Start/End bound a half-open interval
// [Start, End); when both are set and equal, only the exact timestamp
// matches. Skip and Count page the result; values <= 0 mean "not requested".
// AggType and AggPeriod, when both set, select the {type}_{period} aggregate
// table instead of the raw data table.
type QueryOptions struct {
	Start     *time.Time
	End       *time.Time
	Skip      int
	Count     int
	AggType   string
	AggPeriod string
	Order     Order
}

// Reading is a single query result point. Timestamp is formatted with
// microsecond precision and an explicit UTC offset; Value is the
// deserialized JSON value as written by the collector.
type Reading struct {
	Timestamp string
	Value     any
}

// AggTopicKey identifies an aggregate topic by its defining triple. Name is
// lower-cased in map keys, matching the raw topic map convention.
type AggTopicKey struct {
	Name   string
	Type   string
	Period string
}

// AggTopic is an aggregate topic definition joined with the topics it was
// configured over, as recorded in the aggregate metadata blob.
type AggTopic struct {
	Name             string
	Type             string
	Period           string
	ConfiguredTopics []string
}
