package v1

// ExtractJobKind is the only accepted value of ExtractJob.Kind.
const ExtractJobKind = "ExtractJob"

// ExtractJob describes a batch of archives to extract.
type ExtractJob struct {
	Kind     string         `yaml:"kind" json:"kind" validate:"required,eq=ExtractJob"`
	Metadata Metadata       `yaml:"metadata" json:"metadata"`
	Spec     ExtractJobSpec `yaml:"spec" json:"spec"`
}

type Metadata struct {
	Name string `yaml:"name" json:"name" validate:"required"`
}

type ExtractJobSpec struct {
	// ContinueOnError keeps extracting the remaining archives after a tool failure.
	ContinueOnError bool `yaml:"continue_on_error,omitempty" json:"continue_on_error,omitempty"`

	// Tools overrides the extractor binaries. Unset fields keep the command line defaults.
	Tools *ToolsSpec `yaml:"tools,omitempty" json:"tools,omitempty"`

	Archives []ArchiveSpec `yaml:"archives" json:"archives" validate:"required,min=1,dive"`
}

// ToolsSpec names the external extractor binaries.
type ToolsSpec struct {
	// Zip is the zip extractor. Defaults to "unzip".
	Zip *string `yaml:"zip,omitempty" json:"zip,omitempty" template:""`
	// SevenZip is the 7-zip compatible extractor. Defaults to "7z".
	SevenZip *string `yaml:"seven_zip,omitempty" json:"seven_zip,omitempty" template:""`
	// Installer is the Windows installer extractor. Defaults to "msiexec".
	Installer *string `yaml:"installer,omitempty" json:"installer,omitempty" template:""`
}

// ArchiveSpec is a single extraction.
type ArchiveSpec struct {
	ID string `yaml:"id" json:"id" validate:"required"`
	// Archive is the path of the compressed file.
	Archive string `yaml:"archive" json:"archive" validate:"required" template:""`
	// Destination is the output path. Its extension selects the extractor.
	Destination string `yaml:"destination" json:"destination" validate:"required" template:""`
}
