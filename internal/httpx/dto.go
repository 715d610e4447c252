package httpx

import (
	"time"

	cartdomain "github.com/jcmexdev/ecommerce-api/internal/cart/domain"
	catalogdomain "github.com/jcmexdev/ecommerce-api/internal/catalog/domain"
	orderdomain "github.com/jcmexdev/ecommerce-api/internal/order/domain"
	userdomain "github.com/jcmexdev/ecommerce-api/internal/user/domain"
)

type ProductResponse struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Price       float64          `json:"price"`
	ImageURL    string           `json:"image_url"`
	Category    string           `json:"category"`
	Stock       int              `json:"stock"`
	Rating      float64          `json:"rating"`
	Reviews     []ReviewResponse `json:"reviews"`
	CreatedAt   time.Time        `json:"created_at"`
}

type ReviewResponse struct {
	User    string    `json:"user"`
	Comment string    `json:"comment"`
	Rating  float64   `json:"rating"`
	Date    time.Time `json:"date"`
}

type CartItemResponse struct {
	ID        string           `json:"id"`
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type AddToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

type CreateOrderRequest struct {
	Items           []CreateOrderItemDTO `json:"items"`
	TotalAmount     float64              `json:"total_amount"`
	ShippingAddress string               `json:"shipping_address"`
	PaymentMethod   string               `json:"payment_method"`
}

type CreateOrderItemDTO struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type OrderResponse struct {
	ID              string              `json:"id"`
	UserID          string              `json:"user_id"`
	Items           []OrderItemResponse `json:"items"`
	TotalAmount     float64             `json:"total_amount"`
	Status          string              `json:"status"`
	ShippingAddress string              `json:"shipping_address"`
	PaymentMethod   string              `json:"payment_method"`
	OrderDate       time.Time           `json:"order_date"`
}

type OrderItemResponse struct {
	ProductID string           `json:"product_id"`
	Quantity  int              `json:"quantity"`
	Price     float64          `json:"price"`
	Name      string           `json:"name"`
	ImageURL  string           `json:"image_url"`
	Product   *ProductResponse `json:"product,omitempty"`
}

type ProfileResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func mapProduct(p *catalogdomain.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	reviews := make([]ReviewResponse, len(p.Reviews))
	for i, rv := range p.Reviews {
		reviews[i] = ReviewResponse(rv)
	}
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Category:    p.Category,
		Stock:       p.Stock,
		Rating:      p.Rating,
		Reviews:     reviews,
		CreatedAt:   p.CreatedAt,
	}
}

func mapProducts(ps []catalogdomain.Product) []ProductResponse {
	out := make([]ProductResponse, len(ps))
	for i := range ps {
		out[i] = *mapProduct(&ps[i])
	}
	return out
}

func mapCartItem(it *cartdomain.Item) CartItemResponse {
	return CartItemResponse{
		ID:        it.ID,
		ProductID: it.ProductID,
		Quantity:  it.Quantity,
		Product:   mapProduct(it.Product),
	}
}

func mapCartItems(items []cartdomain.Item) []CartItemResponse {
	out := make([]CartItemResponse, len(items))
	for i := range items {
		out[i] = mapCartItem(&items[i])
	}
	return out
}

func mapOrder(o *orderdomain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, it := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Price:     it.Price,
			Name:      it.Name,
			ImageURL:  it.ImageURL,
			Product:   mapProduct(it.Product),
		}
	}
	return OrderResponse{
		ID:              o.ID,
		UserID:          o.UserID,
		Items:           items,
		TotalAmount:     o.TotalAmount,
		Status:          string(o.Status),
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		OrderDate:       o.CreatedAt,
	}
}

func mapOrders(orders []orderdomain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i := range orders {
		out[i] = mapOrder(&orders[i])
	}
	return out
}

func mapProfile(u *userdomain.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Address:   u.Address,
		Phone:     u.Phone,
		CreatedAt: u.CreatedAt,
	}
}
