package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "a11yscan"

	// ConfigFileName is the config file written by init
	ConfigFileName = ".a11yscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "A11YSCAN"
)

// ConfigFileNames lists the config files searched for, in order of preference
var ConfigFileNames = []string{
	".a11yscan.yaml",
	".a11yscan.yml",
	"a11yscan.yaml",
	"a11yscan.yml",
	".a11yscan.toml",
	".a11yscan.json",
	"a11yscan.json",
}

// Output format constants
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"
	OutputFormatHTML = "html"
	OutputFormatCSV  = "csv"
)

// Exit codes of the check command
const (
	ExitCodeOK         = 0
	ExitCodeViolations = 1
	ExitCodeError      = 2
)

// HTML file extensions collected from directories
var HTMLExtensions = []string{".html", ".htm", ".xhtml"}
