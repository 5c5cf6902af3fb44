package tool

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gisard/deepresearch/backend"
)

// LsTool lists paths in the shared file namespace.
type LsTool struct {
	files backend.Backend
}

// NewLsTool builds an ls tool over the given file namespace.
func NewLsTool(files backend.Backend) *LsTool { return &LsTool{files: files} }

// Name returns the tool identifier exposed to the model.
func (t *LsTool) Name() string { return "ls" }

// Description returns the usage guidance surfaced to the model.
func (t *LsTool) Description() string {
	return "List file paths in the workspace, optionally filtered by a path prefix."
}

// Parameters returns the JSON schema for ls arguments.
func (t *LsTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path prefix to filter by (empty lists everything)",
			},
		},
	}
}

// Call lists matching paths, one per line.
func (t *LsTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	prefix, _ := stringArg(args, "path")
	paths, err := t.files.List(ctx, prefix)
	if err != nil {
		return "", NewToolError(t.Name(), err.Error(), "list_failed")
	}
	if len(paths) == 0 {
		return "No files found.", nil
	}
	return strings.Join(paths, "\n"), nil
}

// ReadFileTool reads a file from the shared file namespace.
type ReadFileTool struct {
	files backend.Backend
}

// NewReadFileTool builds a read_file tool over the given file namespace.
func NewReadFileTool(files backend.Backend) *ReadFileTool { return &ReadFileTool{files: files} }

// Name returns the tool identifier exposed to the model.
func (t *ReadFileTool) Name() string { return "read_file" }

// Description returns the usage guidance surfaced to the model.
func (t *ReadFileTool) Description() string {
	return "Read the full content of a file from the workspace."
}

// Parameters returns the JSON schema for read_file arguments.
func (t *ReadFileTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the file to read",
			},
		},
		"required": []string{"file_path"},
	}
}

// Call returns the file content.
func (t *ReadFileTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := stringArg(args, "file_path")
	if !ok || path == "" {
		return "", NewToolError(t.Name(), "missing required argument: file_path", "invalid_arguments")
	}
	data, err := t.files.Read(ctx, path)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return "", NewToolError(t.Name(), fmt.Sprintf("file not found: %s", path), "not_found")
		}
		return "", NewToolError(t.Name(), err.Error(), "read_failed")
	}
	return string(data), nil
}

// WriteFileTool writes a file into the shared file namespace.
type WriteFileTool struct {
	files backend.Backend
}

// NewWriteFileTool builds a write_file tool over the given file namespace.
func NewWriteFileTool(files backend.Backend) *WriteFileTool { return &WriteFileTool{files: files} }

// Name returns the tool identifier exposed to the model.
func (t *WriteFileTool) Name() string { return "write_file" }

// Description returns the usage guidance surfaced to the model.
func (t *WriteFileTool) Description() string {
	return "Create or overwrite a file in the workspace with the given content."
}

// Parameters returns the JSON schema for write_file arguments.
func (t *WriteFileTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the file to write",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Full content to store",
			},
		},
		"required": []string{"file_path", "content"},
	}
}

// Call stores the content at the given path.
func (t *WriteFileTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := stringArg(args, "file_path")
	if !ok || path == "" {
		return "", NewToolError(t.Name(), "missing required argument: file_path", "invalid_arguments")
	}
	content, ok := stringArg(args, "content")
	if !ok {
		return "", NewToolError(t.Name(), "missing required argument: content", "invalid_arguments")
	}
	if err := t.files.Write(ctx, path, []byte(content)); err != nil {
		return "", NewToolError(t.Name(), err.Error(), "write_failed")
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path), nil
}

// EditFileTool performs exact string replacement within an existing file.
type EditFileTool struct {
	files backend.Backend
}

// NewEditFileTool builds an edit_file tool over the given file namespace.
func NewEditFileTool(files backend.Backend) *EditFileTool { return &EditFileTool{files: files} }

// Name returns the tool identifier exposed to the model.
func (t *EditFileTool) Name() string { return "edit_file" }

// Description returns the usage guidance surfaced to the model.
func (t *EditFileTool) Description() string {
	return "Replace an exact string in a file. The old string must occur exactly once unless replace_all is set."
}

// Parameters returns the JSON schema for edit_file arguments.
func (t *EditFileTool) Parameters() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"file_path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the file to edit",
			},
			"old_string": map[string]interface{}{
				"type":        "string",
				"description": "Exact text to replace",
			},
			"new_string": map[string]interface{}{
				"type":        "string",
				"description": "Replacement text",
			},
			"replace_all": map[string]interface{}{
				"type":        "boolean",
				"description": "Replace every occurrence instead of requiring uniqueness",
			},
		},
		"required": []string{"file_path", "old_string", "new_string"},
	}
}

// Call applies the replacement and writes the file back.
func (t *EditFileTool) Call(ctx context.Context, args map[string]interface{}) (string, error) {
	path, ok := stringArg(args, "file_path")
	if !ok || path == "" {
		return "", NewToolError(t.Name(), "missing required argument: file_path", "invalid_arguments")
	}
	oldStr, ok := stringArg(args, "old_string")
	if !ok || oldStr == "" {
		return "", NewToolError(t.Name(), "missing required argument: old_string", "invalid_arguments")
	}
	newStr, ok := stringArg(args, "new_string")
	if !ok {
		return "", NewToolError(t.Name(), "missing required argument: new_string", "invalid_arguments")
	}
	replaceAll, _ := args["replace_all"].(bool)

	data, err := t.files.Read(ctx, path)
	if err != nil {
		if errors.Is(err, backend.ErrNotFound) {
			return "", NewToolError(t.Name(), fmt.Sprintf("file not found: %s", path), "not_found")
		}
		return "", NewToolError(t.Name(), err.Error(), "read_failed")
	}

	content := string(data)
	count := strings.Count(content, oldStr)
	if count == 0 {
		return "", NewToolError(t.Name(), fmt.Sprintf("old_string not found in %s", path), "no_match")
	}
	if count > 1 && !replaceAll {
		return "", NewToolError(t.Name(), fmt.Sprintf("old_string occurs %d times in %s; pass replace_all to replace every occurrence", count, path), "ambiguous_match")
	}

	replaced := count
	if replaceAll {
		content = strings.ReplaceAll(content, oldStr, newStr)
	} else {
		content = strings.Replace(content, oldStr, newStr, 1)
		replaced = 1
	}

	if err := t.files.Write(ctx, path, []byte(content)); err != nil {
		return "", NewToolError(t.Name(), err.Error(), "write_failed")
	}
	return fmt.Sprintf("Replaced %d occurrence(s) in %s", replaced, path), nil
}

// FileTools returns the standard file toolset bound to the given namespace.
func FileTools(files backend.Backend) []Tool {
	return []Tool{
		NewLsTool(files),
		NewReadFileTool(files),
		NewWriteFileTool(files),
		NewEditFileTool(files),
	}
}
