package bcf_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	bcf "github.com/opensource-bim/bcf"
)

func newTopic(g bcf.Guid) bcf.Topic {
	return bcf.Topic{
		Guid:           g,
		Title:          "Leaking pipe",
		CreationDate:   time.Date(2019, 8, 16, 9, 30, 0, 0, time.UTC),
		CreationAuthor: "architect@example.com",
	}
}

func TestBuilderMinimal(t *testing.T) {
	b := bcf.NewBuilder()
	require.NoError(t, b.SetTopic(newTopic(bcf.NewGuid())))
	vm, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, vm.Warnings())

	out, err := vm.Serialize()
	require.NoError(t, err)
	m, err := bcf.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "Leaking pipe", m.Topic.Title)
}

func TestBuilderRejectsSecondTopic(t *testing.T) {
	b := bcf.NewBuilder()
	require.NoError(t, b.SetTopic(newTopic(bcf.NewGuid())))
	err := b.SetTopic(newTopic(bcf.NewGuid()))
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, bcf.CodeTopicAlreadySet, iss[0].Code)
}

func TestBuilderRejectsDuplicateGuidAtInsert(t *testing.T) {
	g := bcf.NewGuid()
	b := bcf.NewBuilder()
	require.NoError(t, b.SetTopic(newTopic(bcf.NewGuid())))
	require.NoError(t, b.AddComment(bcf.Comment{
		Guid: g, Date: time.Now().UTC(), Author: "a", Text: "first",
	}))
	err := b.AddComment(bcf.Comment{
		Guid: g, Date: time.Now().UTC(), Author: "a", Text: "second",
	})
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	assert.Equal(t, bcf.CodeDuplicateGuid, iss[0].Code)
}

func TestBuilderRejectsMalformedGuid(t *testing.T) {
	b := bcf.NewBuilder()
	err := b.SetTopic(newTopic("not-a-guid"))
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	assert.Equal(t, bcf.CodeInvalidGuid, iss[0].Code)
}

func TestBuilderRequiresTopic(t *testing.T) {
	_, err := bcf.NewBuilder().Build()
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	assert.Equal(t, bcf.CodeTopicMissing, iss[0].Code)
}

func TestBuilderChecksCrossReferencesAtBuild(t *testing.T) {
	vpGuid := bcf.NewGuid()
	b := bcf.NewBuilder()
	require.NoError(t, b.SetTopic(newTopic(bcf.NewGuid())))
	// Comment added before the viewpoint it references: legal at insert,
	// resolved at Build.
	require.NoError(t, b.AddComment(bcf.Comment{
		Guid: bcf.NewGuid(), Date: time.Now().UTC(), Author: "a", Text: "see view", Viewpoint: vpGuid,
	}))
	require.NoError(t, b.AddViewpoint(bcf.Viewpoint{Guid: vpGuid, File: "v.bcfv"}))
	vm, err := b.Build()
	require.NoError(t, err)
	assert.Empty(t, vm.Warnings())
}

func TestBuilderDanglingReferenceFailsBuild(t *testing.T) {
	b := bcf.NewBuilder()
	require.NoError(t, b.SetTopic(newTopic(bcf.NewGuid())))
	require.NoError(t, b.AddComment(bcf.Comment{
		Guid: bcf.NewGuid(), Date: time.Now().UTC(), Author: "a", Text: "x",
		Viewpoint: bcf.NewGuid(),
	}))
	_, err := b.Build()
	require.Error(t, err)
	iss, _ := bcf.AsIssues(err)
	require.Len(t, iss, 1)
	assert.Equal(t, bcf.CodeDanglingReference, iss[0].Code)
}

func TestBuilderHeaderAndDocumentReferences(t *testing.T) {
	topic := newTopic(bcf.NewGuid())
	topic.DocumentReferences = []bcf.DocumentReference{
		{Guid: bcf.NewGuid(), ReferencedDocument: "plan.pdf"},
	}
	b := bcf.NewBuilder()
	b.SetHeader(bcf.Header{Files: []bcf.HeaderFile{{IsExternal: true, Filename: "office.ifc"}}})
	require.NoError(t, b.SetTopic(topic))
	vm, err := b.Build()
	require.NoError(t, err)
	require.NotNil(t, vm.Markup().Header)
	assert.Equal(t, "office.ifc", vm.Markup().Header.Files[0].Filename)
}
