package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"roombook/pkg/model"
	"roombook/pkg/notify"
)

// BookingClient speaks the bookings HTTP API.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseUrl string) *BookingClient {
	return &BookingClient{
		httpClient: NewHttpClient(baseUrl),
	}
}

// HTTP exposes the underlying client, e.g. to set default headers.
func (c *BookingClient) HTTP() *HttpClient {
	return c.httpClient
}

func (c *BookingClient) Create(ctx context.Context, req *model.BookingRequest) (*Response, error) {
	return c.httpClient.POST(ctx, "/api/v1/bookings", req)
}

func (c *BookingClient) CreateIdempotent(ctx context.Context, req *model.BookingRequest, key string) (*Response, error) {
	return c.httpClient.POSTWithHeaders(ctx, "/api/v1/bookings", req, map[string]string{"Idempotency-Key": key})
}

func (c *BookingClient) CreateRaw(ctx context.Context, rawBody []byte) (*Response, error) {
	return c.httpClient.POSTRaw(ctx, "/api/v1/bookings", rawBody)
}

func (c *BookingClient) GetAll(ctx context.Context, weekStart string) (*Response, error) {
	path := "/api/v1/bookings"
	if weekStart != "" {
		path += "?start=" + url.QueryEscape(weekStart)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) Delete(ctx context.Context, id string) (*Response, error) {
	return c.httpClient.DELETE(ctx, "/api/v1/bookings/id/"+url.PathEscape(id))
}

func (c *BookingClient) Week(ctx context.Context, start string) (*Response, error) {
	path := "/api/v1/bookings/week"
	if start != "" {
		path += "?start=" + url.QueryEscape(start)
	}
	return c.httpClient.GET(ctx, path)
}

func (c *BookingClient) Notification(ctx context.Context) (*Response, error) {
	return c.httpClient.GET(ctx, "/api/v1/notification")
}

func (c *BookingClient) DecodeBooking(resp *Response) (*model.Booking, error) {
	var booking model.Booking
	if err := decodeData(resp, &booking); err != nil {
		return nil, err
	}
	return &booking, nil
}

func (c *BookingClient) DecodeBookings(resp *Response) ([]*model.Booking, error) {
	var bookings []*model.Booking
	if err := decodeData(resp, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (c *BookingClient) DecodeWeek(resp *Response) (*model.WeekView, error) {
	var view model.WeekView
	if err := decodeData(resp, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

func (c *BookingClient) DecodeNotification(resp *Response) (*notify.Notification, error) {
	var note notify.Notification
	if err := decodeData(resp, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func decodeData(resp *Response, target any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode response wrapper:\n%s\n%w", resp.ToString(), err)
	}
	if err := json.Unmarshal(wrapper.Data, target); err != nil {
		return fmt.Errorf("could not decode response data:\n%s\n%w", resp.ToString(), err)
	}
	return nil
}
