package models

// GeneratedFile is the rendered components file of one package.
type GeneratedFile struct {
	PackageName string
	FilePath    string
	Content     string
	Components  int
	Routes      int
}
