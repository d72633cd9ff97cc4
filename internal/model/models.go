package model

// All lists every persisted model in migration order.
func All() []interface{} {
	return []interface{}{
		&ReferenceData{},
		&Premises{},
		&Bed{},
		&Application{},
		&OfflineApplication{},
		&Assessment{},
		&ClarificationNote{},
		&PlacementApplication{},
		&PlacementDate{},
		&PlacementRequest{},
		&Booking{},
		&Arrival{},
		&Departure{},
		&NonArrival{},
		&Cancellation{},
		&Confirmation{},
		&Extension{},
		&DateChange{},
		&Turnaround{},
		&BedMove{},
		&LostBed{},
		&DomainEvent{},
	}
}
