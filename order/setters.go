package order

// SetStatus returns an UpdateSetter that transitions the order's status.
func SetStatus(status Status) UpdateSetter {
	return func(o *Order) error {
		if !ValidStatus(status) {
			return ErrInvalidStatus
		}
		o.Status = status
		return nil
	}
}

// SetQuantity returns an UpdateSetter that sets the order's quantity.
func SetQuantity(quantity int) UpdateSetter {
	return func(o *Order) error {
		if quantity <= 0 {
			return ErrInvalidQuantity
		}
		o.Quantity = quantity
		return nil
	}
}

// SetPrice returns an UpdateSetter that sets the order's total price.
func SetPrice(price int) UpdateSetter {
	return func(o *Order) error {
		o.Price = price
		return nil
	}
}

// SetCustomerName returns an UpdateSetter that sets the customer name.
func SetCustomerName(name string) UpdateSetter {
	return func(o *Order) error {
		o.CustomerName = name
		return nil
	}
}
