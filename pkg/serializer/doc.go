// Package serializer renders command output in JSON, YAML or table form.
//
// Usage:
//
//	w := serializer.NewFileWriterOrStdout(serializer.FormatYAML, path)
//	defer w.Close()
//	if err := w.Serialize(ctx, report); err != nil {
//		return err
//	}
//
// Table output uses the rows of values implementing Tabular and otherwise
// flattens the value into sorted FIELD/VALUE pairs.
package serializer
