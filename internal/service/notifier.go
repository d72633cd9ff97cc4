package service

import (
	"placement-engine-be/internal/entity"
	"placement-engine-be/internal/pkg/logger"
	"placement-engine-be/internal/pkg/mailer"
	"placement-engine-be/pkg/events"
)

const moduleNotify = "NOTIFY"

// BookingNotifier tells the premises about booking changes. Delivery failures are logged only.
type BookingNotifier struct {
	dispatcher mailer.NotificationDispatcher
	config     EngineConfig
	logger     logger.ILogger
}

func NewBookingNotifier(dispatcher mailer.NotificationDispatcher, config EngineConfig, logger logger.ILogger) *BookingNotifier {
	return &BookingNotifier{dispatcher: dispatcher, config: config, logger: logger}
}

func (n *BookingNotifier) send(templateId string, premises *entity.Premises, booking *entity.Booking, person events.Person) {
	address := premises.EmailAddress
	if address == "" {
		address = n.config.PremisesFallbackEmail
	}
	if address == "" || templateId == "" {
		n.logger.Debug(moduleNotify, "No recipient for booking notification", map[string]interface{}{
			"booking_id":  booking.Id.String(),
			"template_id": templateId,
		})
		return
	}

	personalisation := map[string]string{
		"crn":           person.Crn,
		"name":          person.Name,
		"premisesName":  premises.Name,
		"arrivalDate":   dateOnly(booking.ArrivalDate),
		"departureDate": dateOnly(booking.DepartureDate),
		"bookingId":     booking.Id.String(),
	}
	if err := n.dispatcher.SendEmail(address, templateId, personalisation); err != nil {
		n.logger.Warn(moduleNotify, "Failed to send booking notification", map[string]interface{}{
			"booking_id":  booking.Id.String(),
			"template_id": templateId,
			"error":       err.Error(),
		})
	}
}
