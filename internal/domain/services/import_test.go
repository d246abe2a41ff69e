package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/datacatalog/internal/domain/entities"
	"github.com/ersonp/datacatalog/internal/infrastructure/parsers"
)

func rawRegistration(id string, line int) parsers.RawRegistration {
	return parsers.RawRegistration{Registration: *testRegistration(id), LineNum: line}
}

func TestImportService_Import(t *testing.T) {
	f := newBootstrappedFixture(t)
	service := NewImportService(f.reconciler)

	result, err := service.Import(context.Background(), []parsers.RawRegistration{
		rawRegistration("air", 1),
		rawRegistration("water", 2),
	}, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{f.ids.DataProduct("air"), f.ids.DataProduct("water")}, result.Registered)
	assert.Empty(t, result.Skipped)
	assert.Empty(t, result.Errors)
	assert.Len(t, f.catalogMembers(), 2)
}

func TestImportService_Import_ValidationErrors(t *testing.T) {
	f := newBootstrappedFixture(t)
	service := NewImportService(f.reconciler)

	result, err := service.Import(context.Background(), []parsers.RawRegistration{
		{Registration: entities.Registration{ID: "broken"}, LineNum: 4},
		rawRegistration("air", 5),
		rawRegistration("air", 6),
	}, ImportOptions{})

	require.NoError(t, err)
	assert.Len(t, result.Registered, 1)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 4, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "missing name")
	assert.Equal(t, 6, result.Errors[1].Line)
	assert.Contains(t, result.Errors[1].Message, "duplicate id")
	assert.Equal(t, "line 6: "+result.Errors[1].Message, result.Errors[1].Error())
}

func TestImportService_Import_SkipsExisting(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.register(t, "air")
	service := NewImportService(f.reconciler)

	result, err := service.Import(context.Background(), []parsers.RawRegistration{
		rawRegistration("air", 1),
		rawRegistration("water", 2),
	}, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, []string{"air"}, result.Skipped)
	assert.Equal(t, []string{f.ids.DataProduct("water")}, result.Registered)
}

func TestImportService_Import_DryRun(t *testing.T) {
	f := newBootstrappedFixture(t)
	service := NewImportService(f.reconciler)

	result, err := service.Import(context.Background(), []parsers.RawRegistration{
		rawRegistration("air", 1),
	}, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Empty(t, result.Registered)
	assert.Empty(t, result.Errors)
	assert.Empty(t, f.catalogMembers())
	assert.Empty(t, f.registry.Lookups)
}

func TestImportService_Import_StopsWhenRegistryUnavailable(t *testing.T) {
	f := newBootstrappedFixture(t)
	f.registry.LookupErr = fmt.Errorf("%w: connection refused", entities.ErrRegistryUnavailable)
	service := NewImportService(f.reconciler)

	result, err := service.Import(context.Background(), []parsers.RawRegistration{
		rawRegistration("air", 1),
		rawRegistration("water", 2),
	}, ImportOptions{})

	require.ErrorIs(t, err, entities.ErrRegistryUnavailable)
	require.NotNil(t, result)
	assert.Empty(t, result.Registered)
	assert.Len(t, f.registry.Lookups, 1)
}
