// Command storefront is the command-line storefront client: authenticate,
// browse and manage products, build a cart, and submit and track orders.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"text/tabwriter"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	appkg "github.com/veskr/storefront/internal/app"
	"github.com/veskr/storefront/internal/backend"
	"github.com/veskr/storefront/internal/domain/order"
	"github.com/veskr/storefront/internal/domain/product"
)

const usage = `Usage: storefront <command> [flags]

Session:
  register        create an account and log in
  login           log in with username/email and password
  logout          log out and clear the local cart
  whoami          show the current user
  profile-update  change first/last name

Products:
  products        list all products
  mine            list own products
  product-create  create a product
  product-update  update an owned product
  product-delete  delete an owned product

Cart:
  cart            show the cart
  cart-add        add a product to the cart
  cart-set        set the quantity of a cart line
  cart-remove     remove a cart line

Orders:
  checkout        submit the cart as a new order
  orders          list orders
  order           show one order with its items
  order-status    request an order status change
`

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("storefront failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return errors.New("command required")
	}

	cfg, err := appkg.LoadConfig()
	if err != nil {
		return err
	}
	c, err := appkg.Build(ctx, cfg, nil)
	if err != nil {
		return err
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "register":
		return cmdRegister(ctx, c, rest)
	case "login":
		return cmdLogin(ctx, c, rest)
	case "logout":
		return c.Session.Logout(ctx)
	case "whoami":
		return cmdWhoami(ctx, c)
	case "profile-update":
		return cmdProfileUpdate(ctx, c, rest)
	case "products":
		return cmdProducts(ctx, c)
	case "mine":
		return cmdMine(ctx, c)
	case "product-create":
		return cmdProductCreate(ctx, c, rest)
	case "product-update":
		return cmdProductUpdate(ctx, c, rest)
	case "product-delete":
		return cmdProductDelete(ctx, c, rest)
	case "cart":
		return cmdCart(ctx, c)
	case "cart-add":
		return cmdCartAdd(ctx, c, rest)
	case "cart-set":
		return cmdCartSet(ctx, c, rest)
	case "cart-remove":
		return cmdCartRemove(ctx, c, rest)
	case "checkout":
		return cmdCheckout(ctx, c)
	case "orders":
		return cmdOrders(ctx, c)
	case "order":
		return cmdOrder(ctx, c, rest)
	case "order-status":
		return cmdOrderStatus(ctx, c, rest)
	default:
		fmt.Print(usage)
		return errors.Errorf("unknown command %q", cmd)
	}
}

// restoreSession validates the persisted session before a gated command runs.
func restoreSession(ctx context.Context, c *appkg.Components) error {
	if err := c.Session.Restore(ctx); err != nil {
		return errors.Wrap(err, "log in first")
	}
	return nil
}

func cmdRegister(ctx context.Context, c *appkg.Components, args []string) error {
	fs := flag.NewFlagSet("register", flag.ContinueOnError)
	var req backend.RegisterRequest
	fs.StringVar(&req.Username, "username", "", "username")
	fs.StringVar(&req.Email, "email", "", "email address")
	fs.StringVar(&req.Password, "password", "", "password")
	fs.StringVar(&req.FirstName, "first-name", "", "first name")
	fs.StringVar(&req.LastName, "last-name", "", "last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, u, err := c.Backend.Register(ctx, req)
	if err != nil {
		return err
	}
	if err := c.Session.Login(ctx, token, *u); err != nil {
		return err
	}
	fmt.Printf("registered and logged in as %s\n", u.Username)
	return nil
}

func cmdLogin(ctx context.Context, c *appkg.Components, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	login := fs.String("login", "", "username or email")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	token, u, err := c.Backend.Login(ctx, *login, *password)
	if err != nil {
		return err
	}
	if err := c.Session.Login(ctx, token, *u); err != nil {
		return err
	}
	fmt.Printf("logged in as %s\n", u.Username)
	return nil
}

func cmdWhoami(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	u, _ := c.Session.CurrentUser()
	fmt.Printf("%s <%s> (id %d)\n", u.DisplayName(), u.Email, u.ID)
	return nil
}

func cmdProfileUpdate(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("profile-update", flag.ContinueOnError)
	first := fs.String("first-name", "", "new first name")
	last := fs.String("last-name", "", "new last name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var upd backend.ProfileUpdate
	if *first != "" {
		upd.FirstName = first
	}
	if *last != "" {
		upd.LastName = last
	}
	u, err := c.Backend.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Printf("profile updated: %s\n", u.DisplayName())
	return nil
}

func cmdProducts(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	listings, err := c.Catalog.Browse(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tOWNER\tACTIONS")
	for _, l := range listings {
		actions := "buy"
		if l.CanEdit {
			actions = "buy edit delete"
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", l.ID, l.Name, l.Price, l.OwnerEmail, actions)
	}
	return w.Flush()
}

func cmdMine(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	products, err := c.Catalog.Mine(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tDESCRIPTION")
	for _, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", p.ID, p.Name, p.Price, p.Description)
	}
	return w.Flush()
}

func parseDraft(fs *flag.FlagSet, args []string) (product.Draft, error) {
	var (
		name  = fs.String("name", "", "product name")
		price = fs.String("price", "", "price, e.g. 99.90")
		descr = fs.String("description", "", "description")
	)
	if err := fs.Parse(args); err != nil {
		return product.Draft{}, err
	}

	p, err := decimal.NewFromString(*price)
	if err != nil {
		return product.Draft{}, errors.Wrap(err, "parse price")
	}
	return product.Draft{Name: *name, Price: p, Description: *descr}, nil
}

func cmdProductCreate(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	draft, err := parseDraft(flag.NewFlagSet("product-create", flag.ContinueOnError), args)
	if err != nil {
		return err
	}

	p, err := c.Catalog.Create(ctx, draft)
	if err != nil {
		return err
	}
	fmt.Printf("created product %d: %s (%s)\n", p.ID, p.Name, p.Price)
	return nil
}

func cmdProductUpdate(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("product-update", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	draft, err := parseDraft(fs, args)
	if err != nil {
		return err
	}

	existing, err := findProduct(ctx, c, *id)
	if err != nil {
		return err
	}
	p, err := c.Catalog.Update(ctx, *existing, draft)
	if err != nil {
		return err
	}
	fmt.Printf("updated product %d: %s (%s)\n", p.ID, p.Name, p.Price)
	return nil
}

func cmdProductDelete(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("product-delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	existing, err := findProduct(ctx, c, *id)
	if err != nil {
		return err
	}
	if err := c.Catalog.Delete(ctx, *existing); err != nil {
		return err
	}
	fmt.Printf("deleted product %d\n", *id)
	return nil
}

// findProduct resolves a product ID through the catalog listing so ownership
// checks run against current data.
func findProduct(ctx context.Context, c *appkg.Components, id int64) (*product.Product, error) {
	listings, err := c.Catalog.Browse(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range listings {
		if l.Product.ID == id {
			return &l.Product, nil
		}
	}
	return nil, product.ErrNotFound
}

func cmdCart(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	return printCart(c)
}

func printCart(c *appkg.Components) error {
	items := c.Cart.Items()
	if len(items) == 0 {
		fmt.Println("cart is empty")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE\tQTY\tTOTAL")
	for _, it := range items {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", it.ProductID, it.Name, it.Price, it.Quantity, it.LineTotal())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("total: %s\n", c.Cart.Total())
	return nil
}

func cmdCartAdd(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("cart-add", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	qty := fs.Int("qty", 1, "quantity")
	if err := fs.Parse(args); err != nil {
		return err
	}

	p, err := findProduct(ctx, c, *id)
	if err != nil {
		return err
	}
	if err := c.Cart.Add(ctx, *p, *qty); err != nil {
		return err
	}
	fmt.Printf("added %s ×%d, cart total %s\n", p.Name, *qty, c.Cart.Total())
	return nil
}

func cmdCartSet(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("cart-set", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	qty := fs.Int("qty", 1, "new quantity; below 1 removes the line")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.Cart.UpdateQuantity(ctx, *id, *qty); err != nil {
		return err
	}
	return printCart(c)
}

func cmdCartRemove(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("cart-remove", flag.ContinueOnError)
	id := fs.Int64("id", 0, "product id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := c.Cart.Remove(ctx, *id); err != nil {
		return err
	}
	return printCart(c)
}

func cmdCheckout(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}

	o, err := c.Orders.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("order #%d created, total %s\n", o.ID, o.TotalAmount)
	return nil
}

func cmdOrders(ctx context.Context, c *appkg.Components) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	orders, err := c.Orders.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tTOTAL\tITEMS\tCREATED")
	for _, o := range orders {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n",
			o.ID, o.Status, o.TotalAmount, o.ItemsCount, o.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func cmdOrder(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("order", flag.ContinueOnError)
	id := fs.Int64("id", 0, "order id")
	if err := fs.Parse(args); err != nil {
		return err
	}

	o, err := c.Orders.Detail(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Printf("order #%d  status=%s  total=%s  created=%s\n",
		o.ID, o.Status, o.TotalAmount, o.CreatedAt.Format("2006-01-02 15:04"))
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPRICE\tQTY\tTOTAL")
	for _, it := range o.Items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", it.ProductName, it.UnitPrice, it.Quantity, it.Total)
	}
	return w.Flush()
}

func cmdOrderStatus(ctx context.Context, c *appkg.Components, args []string) error {
	if err := restoreSession(ctx, c); err != nil {
		return err
	}
	fs := flag.NewFlagSet("order-status", flag.ContinueOnError)
	id := fs.Int64("id", 0, "order id")
	status := fs.String("status", "", "new status: new, in_progress, completed, canceled")
	if err := fs.Parse(args); err != nil {
		return err
	}

	next, err := order.ParseStatus(*status)
	if err != nil {
		return err
	}
	o, err := c.Orders.SetStatus(ctx, *id, next)
	if err != nil {
		return err
	}
	fmt.Printf("order #%d is now %s\n", o.ID, o.Status)
	return nil
}
