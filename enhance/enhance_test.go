package enhance

import (
	"strings"
	"testing"

	"github.com/lihtc-analytics/qapflow/docload"
)

// WHAT: normalization maps mangled punctuation to ASCII and collapses whitespace.
// WHY: duplicate detection and scoring both depend on a canonical text form.
func TestNormalizeTextPunctuation(t *testing.T) {
	in := "The  Applicant’s share – up to 30° — shall apply."
	got, clean := NormalizeText(in)
	if clean {
		t.Error("expected clean=false for input with Unicode punctuation")
	}
	if strings.Contains(got, "’") || strings.Contains(got, "–") {
		t.Errorf("Unicode punctuation survived normalization: %q", got)
	}
	if !strings.Contains(got, "degrees") {
		t.Errorf("degree sign not expanded: %q", got)
	}
	if strings.Contains(got, "  ") {
		t.Errorf("whitespace run survived: %q", got)
	}
}

// WHAT: normalizing already-normalized text is a no-op and reports clean.
// WHY: idempotence keeps re-runs from drifting chunk hashes.
func TestNormalizeTextIdempotent(t *testing.T) {
	in := "The “Applicant” shall submit Form A – annually."
	once, _ := NormalizeText(in)
	twice, clean := NormalizeText(once)
	if twice != once {
		t.Errorf("not idempotent: %q vs %q", once, twice)
	}
	if !clean {
		t.Error("second pass should report clean=true")
	}
}

// WHAT: sentence repair splits run-together sentences and appends a
// period to truncated regulatory clauses.
func TestRepairSentences(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		want       string
		wantRepair bool
	}{
		{
			name:       "run-together",
			in:         "The fee is due.Applications received late are rejected.",
			want:       "The fee is due. Applications received late are rejected.",
			wantRepair: true,
		},
		{
			name:       "truncated regulatory clause",
			in:         "The owner of each low-income building in the project shall certify annually as required",
			want:       "The owner of each low-income building in the project shall certify annually as required.",
			wantRepair: true,
		},
		{
			name:       "already complete",
			in:         "All applications shall be submitted by the deadline.",
			want:       "All applications shall be submitted by the deadline.",
			wantRepair: false,
		},
		{
			name:       "short fragment left alone",
			in:         "See Appendix B",
			want:       "See Appendix B",
			wantRepair: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, repaired := RepairSentences(tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if repaired != tt.wantRepair {
				t.Errorf("repaired=%v, want %v", repaired, tt.wantRepair)
			}
		})
	}
}

// WHAT: classification precedence is appendix, table, list, regulation, text.
func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		content string
		want    ContentType
	}{
		{
			name:    "appendix title wins over regulatory content",
			title:   "Appendix A: Definitions",
			content: "Section 10325 shall govern. Applicants must comply.",
			want:    TypeAppendix,
		},
		{
			name:    "pipe table",
			title:   "Scoring",
			content: "| Category | Points | Max |\n| Site | 10 | 15 |",
			want:    TypeTable,
		},
		{
			name:    "bulleted list",
			title:   "Requirements",
			content: "- Site control documentation\n- Market study\n- Phase I report",
			want:    TypeList,
		},
		{
			name:    "regulation via section symbol",
			title:   "General",
			content: "Pursuant to § 10325, the committee reserves credits.",
			want:    TypeRegulation,
		},
		{
			name:    "plain text",
			title:   "Overview",
			content: "The program supports affordable rental housing statewide.",
			want:    TypeText,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.title, tt.content); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}

// WHAT: formatting variants of the same provision hash identically.
// WHY: the hash is the duplicate-detection key.
func TestContentHashCollapsesVariants(t *testing.T) {
	a := ContentHash("The Applicant shall submit Form A.")
	b := ContentHash("the  applicant   shall submit form a")
	if a != b {
		t.Error("case/whitespace/punctuation variants should share a hash")
	}
	c := ContentHash("The Applicant shall submit Form B.")
	if a == c {
		t.Error("distinct content should not collide")
	}
}

// WHAT: entity and cross-reference extraction finds the values reports key on.
func TestExtraction(t *testing.T) {
	content := "Per Section 10325(c), a fee of $2,500 (or 4 percent) applies; " +
		"submit Form TCAC-100 by 2026. See § 10322 and Section 10325(c) again."

	ents := extractEntities(content)
	for _, want := range []string{"$2,500", "Form TCAC-100", "2026"} {
		found := false
		for _, e := range ents {
			if e == want {
				found = true
			}
		}
		if !found {
			t.Errorf("entity %q not extracted from %v", want, ents)
		}
	}

	refs := extractCrossRefs(content)
	if len(refs) != 2 {
		t.Fatalf("want 2 distinct cross-refs, got %v", refs)
	}
	if !strings.Contains(refs[0], "10325") {
		t.Errorf("first cross-ref should cite 10325: %v", refs)
	}
}

// WHAT: quality scores stay within [0, 100] at both extremes.
func TestScoreBounds(t *testing.T) {
	worst := &EnhancedChunk{
		NormalizedContent: "short shall",
		ContentTypeFinal:  TypeRegulation,
		IsDuplicate:       true,
	}
	// shall present, so no regulation penalty; still piles up the rest.
	if s := scoreChunk(worst); s < 0 || s > 100 {
		t.Errorf("score %d out of bounds", s)
	}

	best := &EnhancedChunk{
		NormalizedContent: strings.Repeat("The committee shall allocate credits annually. ", 3),
		ContentTypeFinal:  TypeRegulation,
		EncodingClean:     true,
		SentencesComplete: true,
		Entities:          []string{"$100"},
		CrossRefs:         []string{"Section 10325"},
	}
	if s := scoreChunk(best); s != 100 {
		t.Errorf("best-case score = %d, want clamped 100", s)
	}
}

func rawChunk(id, content string) docload.RawChunk {
	return docload.RawChunk{
		ChunkID:      id,
		StateCode:    "CA",
		PageNumber:   1,
		SectionTitle: "General",
		Content:      content,
		ContentType:  "text",
	}
}

// WHAT: near-identical chunks collapse to exactly one survivor, and the
// survivor is the higher-quality variant.
// WHY: dedupe must be deterministic regardless of input arrival order.
func TestEnhanceDeduplicates(t *testing.T) {
	clean := "The Applicant shall submit Form A and certify compliance with all program requirements annually."
	messy := "the  applicant   shall submit form a and certify compliance with all program requirements annually"

	e := NewEnhancer(nil)
	res := e.Enhance([]docload.RawChunk{
		rawChunk("chk_1", messy),
		rawChunk("chk_2", clean),
	})

	if len(res.Chunks) != 1 {
		t.Fatalf("want 1 surviving chunk, got %d", len(res.Chunks))
	}
	if res.DuplicatesRemoved != 1 || len(res.Duplicates) != 1 {
		t.Fatalf("want 1 removed duplicate, got %d", res.DuplicatesRemoved)
	}

	survivor := res.Chunks[0]
	if survivor.ChunkID != "chk_2" {
		t.Errorf("survivor = %s, want the complete-sentence variant chk_2", survivor.ChunkID)
	}
	if survivor.IsDuplicate {
		t.Error("survivor must not be flagged as duplicate")
	}

	dup := res.Duplicates[0]
	if !dup.IsDuplicate || dup.DuplicateGroupID != survivor.ChunkID {
		t.Errorf("pruned duplicate should point at survivor, got group %q", dup.DuplicateGroupID)
	}

	// Reversed arrival order picks the same survivor.
	res2 := e.Enhance([]docload.RawChunk{
		rawChunk("chk_2", clean),
		rawChunk("chk_1", messy),
	})
	if len(res2.Chunks) != 1 || res2.Chunks[0].ChunkID != "chk_2" {
		t.Error("dedupe outcome changed with input order")
	}
}

// WHAT: whitespace-only and near-empty chunks are dropped, not errored.
func TestEnhanceDropsEmpty(t *testing.T) {
	e := NewEnhancer(nil)
	res := e.Enhance([]docload.RawChunk{
		rawChunk("chk_1", "   \n\t  "),
		rawChunk("chk_2", "short"),
		rawChunk("chk_3", "This chunk is long enough to survive the minimum length filter."),
	})
	if res.DroppedEmpty != 2 {
		t.Errorf("DroppedEmpty = %d, want 2", res.DroppedEmpty)
	}
	if len(res.Chunks) != 1 || res.Chunks[0].ChunkID != "chk_3" {
		t.Fatalf("want only chk_3 to survive, got %+v", res.Chunks)
	}
}

// WHAT: ties on quality score resolve to the earliest chunk.
func TestEnhanceTieBreaksEarliest(t *testing.T) {
	content := "All reserved credits shall be allocated before the end of the calendar year without exception."
	e := NewEnhancer(nil)
	res := e.Enhance([]docload.RawChunk{
		rawChunk("chk_a", content),
		rawChunk("chk_b", content),
	})
	if len(res.Chunks) != 1 || res.Chunks[0].ChunkID != "chk_a" {
		t.Fatalf("tie should retain the earliest chunk, got %+v", res.Chunks)
	}
}
