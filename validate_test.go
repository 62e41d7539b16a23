package bcf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcf "github.com/opensource-bim/bcf"
)

func mustParse(t *testing.T, doc string) *bcf.Markup {
	t.Helper()
	m, err := bcf.Parse([]byte(doc))
	require.NoError(t, err)
	return m
}

func TestValidateMinimal(t *testing.T) {
	m := mustParse(t, minimalMarkup)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	require.NotNil(t, vm)
	assert.Empty(t, vm.Warnings())
}

func TestValidateDanglingViewpointReference(t *testing.T) {
	// One topic G1, one comment C1 referencing viewpoint V1, zero viewpoints.
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
		</Topic>
		<Comment Guid="22222222-2222-4222-8222-222222222222">
			<Date>2019-08-16T10:00:00Z</Date>
			<Author>y</Author>
			<Comment>text</Comment>
			<Viewpoint Guid="33333333-3333-4333-8333-333333333333"/>
		</Comment>
	</Markup>`
	m := mustParse(t, doc)
	vm, err := bcf.Validate(m)
	require.Error(t, err)
	assert.Nil(t, vm)

	iss, ok := bcf.AsIssues(err)
	require.True(t, ok)
	require.Len(t, iss, 1)
	it := iss[0]
	assert.Equal(t, bcf.CodeDanglingReference, it.Code)
	assert.Equal(t, "/Markup/Comment[1]/Viewpoint", it.Path)
	assert.Equal(t, "22222222-2222-4222-8222-222222222222", it.Params["from"])
	assert.Equal(t, "33333333-3333-4333-8333-333333333333", it.Params["guid"])
	assert.Equal(t, "Viewpoint", it.Params["expectedKind"])
}

func TestValidateResolvedViewpointReference(t *testing.T) {
	m := mustParse(t, fullMarkup)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	assert.Empty(t, vm.Warnings())
}

func TestValidateDuplicateGuid(t *testing.T) {
	// Comment reuses the topic's Guid.
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
		</Topic>
		<Comment Guid="11111111-1111-4111-8111-111111111111">
			<Date>2019-08-16T10:00:00Z</Date>
			<Author>y</Author>
			<Comment>text</Comment>
		</Comment>
	</Markup>`
	m := mustParse(t, doc)
	_, err := bcf.Validate(m)
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	require.Len(t, iss, 1)
	it := iss[0]
	assert.Equal(t, bcf.CodeDuplicateGuid, it.Code)
	assert.Equal(t, "11111111-1111-4111-8111-111111111111", it.Params["guid"])
	assert.Equal(t, "/Markup/Topic", it.Params["firstPath"])
	assert.Equal(t, "/Markup/Comment[1]", it.Params["secondPath"])
}

func TestValidateDuplicateDocumentReferenceGuid(t *testing.T) {
	// Two DocumentReference entries sharing a Guid within one topic.
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
			<DocumentReference Guid="44444444-4444-4444-8444-444444444444"/>
			<DocumentReference Guid="44444444-4444-4444-8444-444444444444"/>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)
	_, err := bcf.Validate(m)
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	require.Len(t, iss, 1, "exactly one DuplicateGuid per colliding pair")
	assert.Equal(t, bcf.CodeDuplicateGuid, iss[0].Code)
}

func TestValidateThreeWayCollisionReportsPerPair(t *testing.T) {
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
		</Topic>
		<Comment Guid="11111111-1111-4111-8111-111111111111">
			<Date>2019-08-16T10:00:00Z</Date><Author>y</Author><Comment>a</Comment>
		</Comment>
		<Comment Guid="11111111-1111-4111-8111-111111111111">
			<Date>2019-08-16T10:05:00Z</Date><Author>y</Author><Comment>b</Comment>
		</Comment>
	</Markup>`
	m := mustParse(t, doc)
	_, err := bcf.Validate(m)
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	assert.Len(t, iss, 2, "three occurrences collide as two pairs")
}

func TestValidateRelatedTopicSelfReference(t *testing.T) {
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
			<RelatedTopic Guid="11111111-1111-4111-8111-111111111111"/>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	assert.Empty(t, vm.Warnings())
}

func TestValidateUnresolvedRelatedTopicIsAdvisory(t *testing.T) {
	// Cross-file resolution belongs to the container layer, so an unresolved
	// RelatedTopic warns instead of failing.
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
			<RelatedTopic Guid="99999999-9999-4999-8999-999999999999"/>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	warns := vm.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, bcf.CodeDanglingReference, warns[0].Code)
	assert.Equal(t, "Topic", warns[0].Params["expectedKind"])
}

func TestValidateEnumPolicy(t *testing.T) {
	pol := &bcf.EnumPolicy{
		TopicStatuses: []string{"Open", "Closed"},
		Priorities:    []string{"Low", "Normal", "High"},
	}
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111" TopicStatus="Weird">
			<Title>t</Title>
			<Priority>High</Priority>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)

	// Advisory by default: validation succeeds, the mismatch is a warning.
	vm, err := bcf.Validate(m, bcf.ValidateOpt{Enums: pol})
	require.NoError(t, err)
	warns := vm.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, bcf.CodeUnknownEnumValue, warns[0].Code)
	assert.Equal(t, "TopicStatus", warns[0].Params["field"])

	// Strict-enum mode escalates to a hard error.
	_, err = bcf.Validate(m, bcf.ValidateOpt{Enums: pol, StrictEnums: true})
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, bcf.CodeUnknownEnumValue, iss[0].Code)

	// No policy, no checks.
	vm, err = bcf.Validate(m)
	require.NoError(t, err)
	assert.Empty(t, vm.Warnings())
}

func TestValidateBimSnippetCoherence(t *testing.T) {
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
			<BimSnippet SnippetType="clash" isExternal="true">
				<Reference>clash.json</Reference>
				<ReferenceSchema>clash.xsd</ReferenceSchema>
			</BimSnippet>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)
	vm, err := bcf.Validate(m)
	require.NoError(t, err, "coherence mismatch is a warning, not an error")
	warns := vm.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, bcf.CodeExternalShape, warns[0].Code)
}

func TestValidateDueDateBeforeCreationWarns(t *testing.T) {
	doc := `<Markup>
		<Topic Guid="11111111-1111-4111-8111-111111111111">
			<Title>t</Title>
			<CreationDate>2019-08-16T09:30:00Z</CreationDate>
			<CreationAuthor>x</CreationAuthor>
			<DueDate>2019-08-01T00:00:00Z</DueDate>
		</Topic>
	</Markup>`
	m := mustParse(t, doc)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	warns := vm.Warnings()
	require.Len(t, warns, 1)
	assert.Equal(t, bcf.CodeDueBeforeCreation, warns[0].Code)
}

func TestValidateHandBuiltModel(t *testing.T) {
	// Validation guards hand-constructed models, not just parsed ones, and
	// collects every violation in one pass.
	m := &bcf.Markup{
		Topic: bcf.Topic{Guid: "not-a-guid"},
		Comments: []bcf.Comment{
			{Guid: "22222222-2222-4222-8222-222222222222", Author: "y", Date: time.Now()},
			{}, // missing everything
		},
	}
	_, err := bcf.Validate(m)
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	var codes []string
	for _, it := range iss {
		codes = append(codes, it.Code)
	}
	assert.Contains(t, codes, bcf.CodeInvalidGuid)      // topic guid
	assert.Contains(t, codes, bcf.CodeMissingElement)   // title, dates, authors
	assert.Contains(t, codes, bcf.CodeMissingAttribute) // second comment guid
	assert.GreaterOrEqual(t, len(iss), 6)
}

func TestValidatedIsInsulatedFromLaterMutation(t *testing.T) {
	m := mustParse(t, minimalMarkup)
	vm, err := bcf.Validate(m)
	require.NoError(t, err)
	m.Topic.Title = "changed afterwards"
	assert.Equal(t, "Leaking pipe", vm.Markup().Topic.Title)
}
