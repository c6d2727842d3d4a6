package openadr3

import (
	"context"
	"net/http"
	"net/url"

	"openadr/internal/wire"
)

// TargetFilter narrows list calls to objects carrying all the given
// target values, optionally under one label.
type TargetFilter struct {
	TargetType   string
	TargetValues []string
}

func (f TargetFilter) apply(query url.Values) {
	if f.TargetType != "" {
		query.Set("targetType", f.TargetType)
	}
	for _, v := range f.TargetValues {
		query.Add("targetValues", v)
	}
}

// ProgramListOptions narrows Programs.
type ProgramListOptions struct {
	Targets TargetFilter
}

// Programs lists every program visible to the caller, walking all pages.
func (c *Client) Programs(ctx context.Context, opts ProgramListOptions) ([]wire.Program, error) {
	query := url.Values{}
	opts.Targets.apply(query)
	return listAll[wire.Program](ctx, c, "/programs", query)
}

// Program retrieves one program.
func (c *Client) Program(ctx context.Context, id wire.Identifier) (*wire.Program, error) {
	var program wire.Program
	if err := c.do(ctx, http.MethodGet, "/programs/"+string(id), nil, nil, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// CreateProgram creates a program.
func (c *Client) CreateProgram(ctx context.Context, req wire.ProgramRequest) (*wire.Program, error) {
	var program wire.Program
	if err := c.do(ctx, http.MethodPost, "/programs", nil, req, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// UpdateProgram replaces a program.
func (c *Client) UpdateProgram(ctx context.Context, id wire.Identifier, req wire.ProgramRequest) (*wire.Program, error) {
	var program wire.Program
	if err := c.do(ctx, http.MethodPut, "/programs/"+string(id), nil, req, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// DeleteProgram deletes a program and returns its last state.
func (c *Client) DeleteProgram(ctx context.Context, id wire.Identifier) (*wire.Program, error) {
	var program wire.Program
	if err := c.do(ctx, http.MethodDelete, "/programs/"+string(id), nil, nil, &program); err != nil {
		return nil, err
	}
	return &program, nil
}

// EventListOptions narrows Events.
type EventListOptions struct {
	ProgramID *wire.Identifier
	Targets   TargetFilter
}

// Events lists every event visible to the caller, walking all pages.
func (c *Client) Events(ctx context.Context, opts EventListOptions) ([]wire.Event, error) {
	query := url.Values{}
	if opts.ProgramID != nil {
		query.Set("programID", string(*opts.ProgramID))
	}
	opts.Targets.apply(query)
	return listAll[wire.Event](ctx, c, "/events", query)
}

// Event retrieves one event.
func (c *Client) Event(ctx context.Context, id wire.Identifier) (*wire.Event, error) {
	var event wire.Event
	if err := c.do(ctx, http.MethodGet, "/events/"+string(id), nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// CreateEvent creates an event.
func (c *Client) CreateEvent(ctx context.Context, req wire.EventRequest) (*wire.Event, error) {
	var event wire.Event
	if err := c.do(ctx, http.MethodPost, "/events", nil, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateEvent replaces an event.
func (c *Client) UpdateEvent(ctx context.Context, id wire.Identifier, req wire.EventRequest) (*wire.Event, error) {
	var event wire.Event
	if err := c.do(ctx, http.MethodPut, "/events/"+string(id), nil, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// DeleteEvent deletes an event and returns its last state.
func (c *Client) DeleteEvent(ctx context.Context, id wire.Identifier) (*wire.Event, error) {
	var event wire.Event
	if err := c.do(ctx, http.MethodDelete, "/events/"+string(id), nil, nil, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// ProgramTimeline fetches a program's events and composes them into a
// timeline.
func (c *Client) ProgramTimeline(ctx context.Context, programID wire.Identifier) (*Timeline, error) {
	program, err := c.Program(ctx, programID)
	if err != nil {
		return nil, err
	}
	events, err := c.Events(ctx, EventListOptions{ProgramID: &programID})
	if err != nil {
		return nil, err
	}
	return NewTimeline(program, events, c.logger)
}

// ReportListOptions narrows Reports.
type ReportListOptions struct {
	ProgramID  *wire.Identifier
	EventID    *wire.Identifier
	ClientName string
}

// Reports lists every report visible to the caller, walking all pages.
func (c *Client) Reports(ctx context.Context, opts ReportListOptions) ([]wire.Report, error) {
	query := url.Values{}
	if opts.ProgramID != nil {
		query.Set("programID", string(*opts.ProgramID))
	}
	if opts.EventID != nil {
		query.Set("eventID", string(*opts.EventID))
	}
	if opts.ClientName != "" {
		query.Set("clientName", opts.ClientName)
	}
	return listAll[wire.Report](ctx, c, "/reports", query)
}

// Report retrieves one report.
func (c *Client) Report(ctx context.Context, id wire.Identifier) (*wire.Report, error) {
	var report wire.Report
	if err := c.do(ctx, http.MethodGet, "/reports/"+string(id), nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// CreateReport creates a report.
func (c *Client) CreateReport(ctx context.Context, req wire.ReportRequest) (*wire.Report, error) {
	var report wire.Report
	if err := c.do(ctx, http.MethodPost, "/reports", nil, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// UpdateReport replaces a report.
func (c *Client) UpdateReport(ctx context.Context, id wire.Identifier, req wire.ReportRequest) (*wire.Report, error) {
	var report wire.Report
	if err := c.do(ctx, http.MethodPut, "/reports/"+string(id), nil, req, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// DeleteReport deletes a report and returns its last state.
func (c *Client) DeleteReport(ctx context.Context, id wire.Identifier) (*wire.Report, error) {
	var report wire.Report
	if err := c.do(ctx, http.MethodDelete, "/reports/"+string(id), nil, nil, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// VenListOptions narrows Vens.
type VenListOptions struct {
	VenName string
	Targets TargetFilter
}

// Vens lists every VEN visible to the caller, walking all pages.
func (c *Client) Vens(ctx context.Context, opts VenListOptions) ([]wire.Ven, error) {
	query := url.Values{}
	if opts.VenName != "" {
		query.Set("venName", opts.VenName)
	}
	opts.Targets.apply(query)
	return listAll[wire.Ven](ctx, c, "/vens", query)
}

// Ven retrieves one VEN.
func (c *Client) Ven(ctx context.Context, id wire.Identifier) (*wire.Ven, error) {
	var ven wire.Ven
	if err := c.do(ctx, http.MethodGet, "/vens/"+string(id), nil, nil, &ven); err != nil {
		return nil, err
	}
	return &ven, nil
}

// CreateVen registers a VEN.
func (c *Client) CreateVen(ctx context.Context, req wire.VenRequest) (*wire.Ven, error) {
	var ven wire.Ven
	if err := c.do(ctx, http.MethodPost, "/vens", nil, req, &ven); err != nil {
		return nil, err
	}
	return &ven, nil
}

// UpdateVen replaces a VEN.
func (c *Client) UpdateVen(ctx context.Context, id wire.Identifier, req wire.VenRequest) (*wire.Ven, error) {
	var ven wire.Ven
	if err := c.do(ctx, http.MethodPut, "/vens/"+string(id), nil, req, &ven); err != nil {
		return nil, err
	}
	return &ven, nil
}

// DeleteVen deletes a VEN and returns its last state.
func (c *Client) DeleteVen(ctx context.Context, id wire.Identifier) (*wire.Ven, error) {
	var ven wire.Ven
	if err := c.do(ctx, http.MethodDelete, "/vens/"+string(id), nil, nil, &ven); err != nil {
		return nil, err
	}
	return &ven, nil
}

// ResourceListOptions narrows Resources.
type ResourceListOptions struct {
	ResourceName string
	Targets      TargetFilter
}

// Resources lists the resources beneath a VEN, walking all pages.
func (c *Client) Resources(ctx context.Context, venID wire.Identifier, opts ResourceListOptions) ([]wire.Resource, error) {
	query := url.Values{}
	if opts.ResourceName != "" {
		query.Set("resourceName", opts.ResourceName)
	}
	opts.Targets.apply(query)
	return listAll[wire.Resource](ctx, c, "/vens/"+string(venID)+"/resources", query)
}

// Resource retrieves one resource beneath a VEN.
func (c *Client) Resource(ctx context.Context, venID, id wire.Identifier) (*wire.Resource, error) {
	var resource wire.Resource
	if err := c.do(ctx, http.MethodGet, "/vens/"+string(venID)+"/resources/"+string(id), nil, nil, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// CreateResource creates a resource beneath a VEN.
func (c *Client) CreateResource(ctx context.Context, venID wire.Identifier, req wire.ResourceRequest) (*wire.Resource, error) {
	var resource wire.Resource
	if err := c.do(ctx, http.MethodPost, "/vens/"+string(venID)+"/resources", nil, req, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// UpdateResource replaces a resource beneath a VEN.
func (c *Client) UpdateResource(ctx context.Context, venID, id wire.Identifier, req wire.ResourceRequest) (*wire.Resource, error) {
	var resource wire.Resource
	if err := c.do(ctx, http.MethodPut, "/vens/"+string(venID)+"/resources/"+string(id), nil, req, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// DeleteResource deletes a resource and returns its last state.
func (c *Client) DeleteResource(ctx context.Context, venID, id wire.Identifier) (*wire.Resource, error) {
	var resource wire.Resource
	if err := c.do(ctx, http.MethodDelete, "/vens/"+string(venID)+"/resources/"+string(id), nil, nil, &resource); err != nil {
		return nil, err
	}
	return &resource, nil
}

// SubscriptionListOptions narrows Subscriptions.
type SubscriptionListOptions struct {
	ProgramID  *wire.Identifier
	ClientName string
}

// Subscriptions lists every subscription visible to the caller, walking
// all pages.
func (c *Client) Subscriptions(ctx context.Context, opts SubscriptionListOptions) ([]wire.Subscription, error) {
	query := url.Values{}
	if opts.ProgramID != nil {
		query.Set("programID", string(*opts.ProgramID))
	}
	if opts.ClientName != "" {
		query.Set("clientName", opts.ClientName)
	}
	return listAll[wire.Subscription](ctx, c, "/subscriptions", query)
}

// Subscription retrieves one subscription.
func (c *Client) Subscription(ctx context.Context, id wire.Identifier) (*wire.Subscription, error) {
	var subscription wire.Subscription
	if err := c.do(ctx, http.MethodGet, "/subscriptions/"+string(id), nil, nil, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

// CreateSubscription creates a subscription.
func (c *Client) CreateSubscription(ctx context.Context, req wire.SubscriptionRequest) (*wire.Subscription, error) {
	var subscription wire.Subscription
	if err := c.do(ctx, http.MethodPost, "/subscriptions", nil, req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

// UpdateSubscription replaces a subscription.
func (c *Client) UpdateSubscription(ctx context.Context, id wire.Identifier, req wire.SubscriptionRequest) (*wire.Subscription, error) {
	var subscription wire.Subscription
	if err := c.do(ctx, http.MethodPut, "/subscriptions/"+string(id), nil, req, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}

// DeleteSubscription deletes a subscription and returns its last state.
func (c *Client) DeleteSubscription(ctx context.Context, id wire.Identifier) (*wire.Subscription, error) {
	var subscription wire.Subscription
	if err := c.do(ctx, http.MethodDelete, "/subscriptions/"+string(id), nil, nil, &subscription); err != nil {
		return nil, err
	}
	return &subscription, nil
}
