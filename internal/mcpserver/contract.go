package mcpserver

// NoteFormatContract describes the stored record shape for LLM clients.
const NoteFormatContract = `# quill Note Format

The store is one JSON file holding a single array of note objects, in
append order. Each note has exactly these keys:

| key | type | meaning |
|---|---|---|
| ` + "`id`" + ` | integer | assigned by quill: previous note's id + 1, starting at 1 |
| ` + "`title`" + ` | string | stored verbatim |
| ` + "`content`" + ` | string | HTML-escaped on write (` + "`<`" + ` becomes ` + "`&lt;`" + `, etc.) |
| ` + "`keywords`" + ` | array of strings | the comma-separated input, split and trimmed |
| ` + "`category`" + ` | string | stored verbatim |

## Rules

1. Do not choose ids; ` + "`add_note`" + ` assigns them.
2. Pass content as plain text. Do **not** pre-escape it, or it will be
   escaped twice.
3. Keywords are one string: ` + "`\"go, notes, ideas\"`" + `. An empty string
   is stored as ` + "`[\"\"]`" + `.
4. Nothing is validated; empty fields are accepted.

## Example record

` + "```" + `json
{
  "id": 3,
  "title": "Standup",
  "content": "Ship &lt;b&gt;v2&lt;/b&gt;",
  "keywords": ["work", "daily"],
  "category": "meetings"
}
` + "```" + `
`
