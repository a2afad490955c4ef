package pyscan

import (
	"errors"
	"strings"
	"testing"

	"github.com/trellis-data/pluginkit/discerr"
)

var descriptorNames = []string{"ParserPlugin", "UpgraderPlugin", "ExporterPlugin", "BasePlugin"}

func TestExtractRegistrationBody(t *testing.T) {
	src := `from acme.parser import CsvParser

def helper():
    return None

def register_plugin():
    return [
        ParserPlugin(name="acme", obj=CsvParser),
    ]

TRAILING = True
`
	body, err := ExtractRegistrationBody("acme", src, "register_plugin")
	if err != nil {
		t.Fatalf("ExtractRegistrationBody: %v", err)
	}
	if !strings.Contains(body.Text, "ParserPlugin") {
		t.Errorf("body missing site: %q", body.Text)
	}
	if strings.Contains(body.Text, "helper") || strings.Contains(body.Text, "TRAILING") {
		t.Errorf("body leaked surrounding code: %q", body.Text)
	}
	if src[body.Offset:body.Offset+len(body.Text)] != body.Text {
		t.Error("offset does not locate the body in the file")
	}
}

func TestExtractRegistrationBodyMissing(t *testing.T) {
	_, err := ExtractRegistrationBody("acme", "def other():\n    pass\n", "register_plugin")
	if !errors.Is(err, &discerr.Error{Code: discerr.CodeRegistrationFunctionNotFound}) {
		t.Fatalf("want REGISTRATION_FUNCTION_NOT_FOUND, got %v", err)
	}
}

func TestExtractRegistrationBodyIgnoresNestedDef(t *testing.T) {
	src := `class Wrapper:
    def register_plugin(self):
        return []
`
	_, err := ExtractRegistrationBody("acme", src, "register_plugin")
	if err == nil {
		t.Fatal("indented definitions are not the module-level entry point")
	}
}

func TestExtractRegistrationBodyIgnoresMention(t *testing.T) {
	src := `HELP = """
def register_plugin():
    fake
"""

def register_plugin():
    return []
`
	body, err := ExtractRegistrationBody("acme", src, "register_plugin")
	if err != nil {
		t.Fatalf("ExtractRegistrationBody: %v", err)
	}
	if !strings.Contains(body.Text, "return []") {
		t.Errorf("wrong body selected: %q", body.Text)
	}
	if strings.Contains(body.Text, "fake") {
		t.Errorf("body taken from string literal: %q", body.Text)
	}
}

func TestFindSitesSourceOrder(t *testing.T) {
	body := Body{Text: `    return [
        ParserPlugin(name="p", obj=CsvParser),
        ExporterPlugin(name="e", obj=run_export),
    ]
`}
	sites := FindSites(body, descriptorNames)
	if len(sites) != 2 {
		t.Fatalf("sites = %d, want 2", len(sites))
	}
	if sites[0].Constructor != "ParserPlugin" || sites[1].Constructor != "ExporterPlugin" {
		t.Errorf("order = %s, %s", sites[0].Constructor, sites[1].Constructor)
	}
	if !strings.Contains(sites[0].ArgsText, `name="p"`) {
		t.Errorf("args text = %q", sites[0].ArgsText)
	}
}

func TestFindSitesNestedCall(t *testing.T) {
	body := Body{Text: `    return [ParserPlugin(name="p", obj=wrap(CsvParser, depth=2))]` + "\n"}
	sites := FindSites(body, descriptorNames)
	if len(sites) != 1 {
		t.Fatalf("sites = %d, want 1", len(sites))
	}
	if !strings.HasSuffix(sites[0].ArgsText, "depth=2))") {
		t.Errorf("nested call must stay inside the site span: %q", sites[0].ArgsText)
	}
}

func TestFindSitesIgnoresLookalikes(t *testing.T) {
	body := Body{Text: `    label = "ParserPlugin(name='x')"
    # ParserPlugin(name="commented")
    MyParserPlugin(name="prefixed")
    kind = ParserPlugin
    return [ParserPlugin(name="real", obj=CsvParser)]
`}
	sites := FindSites(body, descriptorNames)
	if len(sites) != 1 {
		t.Fatalf("sites = %d, want 1: %+v", len(sites), sites)
	}
	if !strings.Contains(sites[0].ArgsText, `"real"`) {
		t.Errorf("matched the wrong occurrence: %q", sites[0].ArgsText)
	}
}

func TestFindSitesSpanOffsets(t *testing.T) {
	text := `    return [ParserPlugin(name="p", obj=C)]` + "\n"
	body := Body{Text: text, Offset: 100}
	sites := FindSites(body, descriptorNames)
	if len(sites) != 1 {
		t.Fatalf("sites = %d, want 1", len(sites))
	}
	start := sites[0].Start - 100
	end := sites[0].End - 100
	if text[start:end] != `ParserPlugin(name="p", obj=C)` {
		t.Errorf("span = %q", text[start:end])
	}
}

func TestFindSitesEmptyBody(t *testing.T) {
	if sites := FindSites(Body{Text: "    return []\n"}, descriptorNames); len(sites) != 0 {
		t.Errorf("sites = %d, want 0", len(sites))
	}
}
