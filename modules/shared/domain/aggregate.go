// Package domain provides shared domain primitives.
package domain

import "github.com/agrilink/marketplace/modules/shared/events"

// AggregateRoot is a base type for aggregate roots that collect domain events.
// Embed this in aggregate structs to gain event collection capability.
//
// Example:
//
//	type Order struct {
//	    domain.AggregateRoot
//	    id     OrderID
//	    status Status
//	}
//
//	func (o *Order) Cancel() error {
//	    o.status = StatusCancelled
//	    o.AddDomainEvent(NewOrderCancelledEvent(o))
//	    return nil
//	}
type AggregateRoot struct {
	domainEvents []events.Event
}

// AddDomainEvent adds an event to the aggregate's internal collection.
func (a *AggregateRoot) AddDomainEvent(event events.Event) {
	a.domainEvents = append(a.domainEvents, event)
}

// DomainEvents returns all collected domain events.
func (a *AggregateRoot) DomainEvents() []events.Event {
	return a.domainEvents
}

// ClearDomainEvents removes all collected events.
func (a *AggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}

// PopDomainEvents returns the collected events and clears the collection.
func (a *AggregateRoot) PopDomainEvents() []events.Event {
	evts := a.domainEvents
	a.domainEvents = nil
	return evts
}
