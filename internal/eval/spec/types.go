package spec

type EvalSpec struct {
	Jobs     []Job             `yaml:"jobs" schema:"required,minItems=1"`
	Targets  map[string]Target `yaml:"targets" schema:"required"`
	Metrics  MetricsConfig     `yaml:"metrics"`
	Runs     RunsConfig        `yaml:"runs"`
	Tracking TrackingConfig    `yaml:"tracking"`
}

type Job struct {
	Name    string   `yaml:"name" schema:"required"`
	Dataset string   `yaml:"dataset" schema:"required" description:"Path to a .jsonl or .yaml ground truth dataset"`
	Targets []string `yaml:"targets" schema:"required,minItems=1"`
}

const (
	TargetAzureSearch   = "azure_search"
	TargetElasticsearch = "elasticsearch"
	TargetPostgres      = "postgres"
	TargetAPI           = "api"
)

// Target describes one search backend. Connection is the endpoint, address,
// connection string or base URL depending on Type.
type Target struct {
	Type           string   `yaml:"type" schema:"required,enum=azure_search|elasticsearch|postgres|api"`
	Connection     string   `yaml:"connection" schema:"required" description:"Endpoint, comma-separated addresses, connection string or base URL"`
	Index          string   `yaml:"index,omitempty"`
	APIKey         string   `yaml:"api_key,omitempty"`
	APIVersion     string   `yaml:"api_version,omitempty"`
	SemanticConfig string   `yaml:"semantic_config,omitempty"`
	VectorFields   string   `yaml:"vector_fields,omitempty"`
	SearchFields   []string `yaml:"search_fields,omitempty"`
	Fields         []string `yaml:"fields,omitempty"`
	Query          string   `yaml:"query,omitempty" description:"SQL with $1 as the query text and $2 as the limit"`
	Username       string   `yaml:"username,omitempty"`
	Password       string   `yaml:"password,omitempty"`
}

type MetricsConfig struct {
	Evaluators []string `yaml:"evaluators,omitempty"`
	KValues    []int    `yaml:"k_values" description:"Cut-offs for recall, precision and F1 when evaluators is empty"`
	FoundK     int      `yaml:"found_k,omitempty"`
	Scheme     string   `yaml:"scheme,omitempty" schema:"enum=location|url,default=location"`
}

type RunsConfig struct {
	Top               int     `yaml:"top" schema:"default=10,minimum=1"`
	Concurrency       int     `yaml:"concurrency" schema:"default=1,minimum=1"`
	RequestsPerSecond float64 `yaml:"requests_per_second,omitempty"`
	Warmup            int     `yaml:"warmup"`
	Iterations        int     `yaml:"iterations" schema:"default=1,minimum=1"`
	Retries           int     `yaml:"retries,omitempty"`
	TimeoutSeconds    int     `yaml:"timeout_seconds,omitempty"`
}

const (
	SinkMlflow   = "mlflow"
	SinkPostgres = "postgres"
	SinkLog      = "log"
)

type TrackingConfig struct {
	Experiment string `yaml:"experiment" schema:"default=search"`
	Sinks      []Sink `yaml:"sinks,omitempty"`
}

type Sink struct {
	Type string `yaml:"type" schema:"required,enum=mlflow|postgres|log"`
	URI  string `yaml:"uri,omitempty"`
}
