package answer

import (
	"fmt"
	"strings"

	"github.com/prodex-cloud/prodex/internal/domain/record"
	"github.com/prodex-cloud/prodex/internal/domain/schema"
)

// priorityAttrs are always serialized in full, ahead of everything else.
// Dropping an identifier or name from the prompt would make the answer
// unattributable, and descriptions carry most of the prose the model
// reasons over.
var priorityAttrs = []schema.Attribute{
	schema.AttrIdentifier,
	schema.AttrName,
	schema.AttrProductType,
	schema.AttrDescription,
}

// serializeRecords renders up to maxRecords rows as numbered "key: value"
// blocks, each bounded to roughly charBudget characters. Priority fields go
// first and never count against the budget; remaining fields are appended
// until the budget runs out.
func serializeRecords(records []record.Record, maxRecords, charBudget int, resolver *schema.Resolver) string {
	if len(records) > maxRecords {
		records = records[:maxRecords]
	}

	var sb strings.Builder
	for i, r := range records {
		if i > 0 {
			sb.WriteByte('\n')
		}
		fmt.Fprintf(&sb, "Product %d:\n", i+1)
		sb.WriteString(serializeOne(record.Flatten(r), charBudget, resolver))
	}
	return sb.String()
}

func serializeOne(flat record.Record, charBudget int, resolver *schema.Resolver) string {
	priority := make(map[string]bool)
	var sb strings.Builder

	for _, attr := range priorityAttrs {
		key := lookupFieldKey(flat, attr, resolver)
		if key == "" || priority[key] {
			continue
		}
		priority[key] = true
		fmt.Fprintf(&sb, "  %s: %s\n", key, flat.GetText(key))
	}

	remaining := charBudget
	for _, key := range flat.Keys() {
		if priority[key] {
			continue
		}
		line := fmt.Sprintf("  %s: %s\n", key, flat.GetText(key))
		if len(line) > remaining {
			continue
		}
		remaining -= len(line)
		sb.WriteString(line)
	}
	return sb.String()
}

// lookupFieldKey finds the record key backing a logical attribute, through
// the schema resolver first and the raw synonym list second.
func lookupFieldKey(flat record.Record, attr schema.Attribute, resolver *schema.Resolver) string {
	if col, ok := resolver.Resolve(attr); ok {
		if stored, present := flat.HasFold(col); present {
			return stored
		}
	}
	for _, candidate := range schema.Candidates(attr) {
		if stored, ok := flat.HasFold(candidate); ok {
			return stored
		}
	}
	return ""
}
