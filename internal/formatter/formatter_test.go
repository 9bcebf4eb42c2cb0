package formatter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_SimpleDocument(t *testing.T) {
	input := `<root><name>Ada</name><age>36</age></root>`

	formatter := NewFormatter()
	formatted, err := formatter.Format(input)
	require.NoError(t, err)

	expectedOutput := `<root>
  <name>Ada</name>
  <age>36</age>
</root>
`
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_NestedAndEmptyElements(t *testing.T) {
	input := `<root><user><id>1</id><tags></tags></user><n></n></root>`

	formatted, err := NewFormatterWithIndent("\t").Format(input)
	require.NoError(t, err)

	expectedOutput := "<root>\n" +
		"\t<user>\n" +
		"\t\t<id>1</id>\n" +
		"\t\t<tags></tags>\n" +
		"\t</user>\n" +
		"\t<n></n>\n" +
		"</root>\n"
	assert.Equal(t, expectedOutput, formatted)
}

func TestFormat_KeepsEscaping(t *testing.T) {
	input := `<root><note>5 &lt; 10 &amp; 10 &gt; 5</note><cr>a&#xD;b</cr></root>`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Contains(t, formatted, "<note>5 &lt; 10 &amp; 10 &gt; 5</note>")
	assert.Contains(t, formatted, "<cr>a&#xD;b</cr>")
}

func TestFormat_Declaration(t *testing.T) {
	input := `<?xml version="1.0" encoding="UTF-8"?><root><a>1</a></root>`

	formatted, err := NewFormatter().Format(input)
	require.NoError(t, err)
	assert.Equal(t, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<root>\n  <a>1</a>\n</root>\n", formatted)
}

func TestFormat_Idempotent(t *testing.T) {
	input := `<root><a><b>x</b></a></root>`
	f := NewFormatter()

	once, err := f.Format(input)
	require.NoError(t, err)
	twice, err := f.Format(once)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestFormat_EmptyInput(t *testing.T) {
	formatted, err := NewFormatter().Format("   \n")
	require.NoError(t, err)
	assert.Equal(t, "", formatted)
}

func TestFormat_InvalidXML(t *testing.T) {
	tests := []string{
		`<root><a></root>`,
		`<root>`,
		`<root>&bogus;</root>`,
	}
	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := NewFormatter().Format(input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "failed to parse XML")
		})
	}
}
