package controllers

import (
	"go.uber.org/dig"

	"github.com/rios0rios0/gitbridge/internal/domain/entities"
)

// RegisterProviders registers all controller providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(NewCheckController); err != nil {
		return err
	}
	if err := container.Provide(NewListController); err != nil {
		return err
	}
	return container.Provide(NewControllers)
}

// NewControllers aggregates all controllers into a slice for the AppInternal.
func NewControllers(
	checkController *CheckController,
	listController *ListController,
) *[]entities.Controller {
	return &[]entities.Controller{
		checkController,
		listController,
	}
}
