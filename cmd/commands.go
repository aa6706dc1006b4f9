package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"storefront/internal/assistant"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"
)

// seed

var seedReset bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the sample catalogue if it has never been written",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		return withApp(ctx, func(a *app) error {
			if seedReset {
				if err := a.backend.Delete(ctx, repository.KeyProducts); err != nil {
					return err
				}
			}
			list, err := a.store.LoadProducts(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d products in catalogue\n", len(list))
			return nil
		})
	},
}

// products

var (
	productFilter repository.ProductFilter
	productDraft  domain.Product
	productAsJSON bool
)

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List the catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			list, err := a.svc.Products.List(cmd.Context(), productFilter)
			if err != nil {
				return err
			}
			if productAsJSON {
				return printJSON(cmd.OutOrStdout(), list)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tPRICE\tCATEGORY\tRATING")
			for _, p := range list {
				price := money(p.Price)
				if p.HasDiscount() {
					price += " (was " + money(p.OriginalPrice) + ")"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%.1f\n", p.ID, p.Title, price, p.Category, p.Rating)
			}
			return tw.Flush()
		})
	},
}

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "List a new product (seller session required)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			seller, err := a.svc.Session.RequireRole(domain.RoleSeller)
			if err != nil {
				return err
			}
			p, err := a.svc.Products.Create(cmd.Context(), seller, productDraft)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), p)
		})
	},
}

var productsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a product (seller session required)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if _, err := a.svc.Session.RequireRole(domain.RoleSeller); err != nil {
				return err
			}
			return a.svc.Products.Delete(cmd.Context(), args[0])
		})
	},
}

// session

var (
	loginRole string
	loginName string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Start a session as a customer or seller",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			u, err := a.svc.Session.Login(cmd.Context(), domain.Role(loginRole), loginName)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s <%s> (%s)\n", u.Name, u.Email, u.Role)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return a.svc.Session.Logout(cmd.Context())
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current user",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			u, ok := a.svc.Session.Current()
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> id=%s role=%s\n", u.Name, u.Email, u.ID, u.Role)
			return nil
		})
	},
}

// cart

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return printCart(cmd.OutOrStdout(), a)
		})
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id>",
	Short: "Add one unit of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			p, err := a.svc.Products.GetByID(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := a.svc.Cart.Add(cmd.Context(), *p); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), a)
		})
	},
}

var cartSetCmd = &cobra.Command{
	Use:   "set <product-id> <quantity>",
	Short: "Set the quantity of a line (values below 1 are ignored)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		q, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("%w: quantity %q", service.ErrInvalidInput, args[1])
		}
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.svc.Cart.UpdateQuantity(cmd.Context(), args[0], q); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), a)
		})
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "rm <product-id>",
	Short: "Remove a line",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if err := a.svc.Cart.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			return printCart(cmd.OutOrStdout(), a)
		})
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			return a.svc.Cart.Clear(cmd.Context())
		})
	},
}

// orders

var paymentMethod string

var checkoutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Place an order for the whole cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			o, err := service.Checkout(cmd.Context(), a.svc.Cart, a.svc.Session, a.svc.Orders, domain.PaymentMethod(paymentMethod))
			if o != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "order %s placed, total %s (%s)\n", o.ID, money(o.Total), o.PaymentMethod)
			}
			return err
		})
	},
}

var ordersCmd = &cobra.Command{
	Use:   "orders",
	Short: "List the current user's orders",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			u, err := a.svc.Session.RequireUser()
			if err != nil {
				return err
			}
			list, err := a.svc.Orders.ListOrders(cmd.Context(), u.ID)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tITEMS\tTOTAL\tSTATUS\tPAYMENT")
			for _, o := range list {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t%s\n", o.ID, o.Date, domain.ItemCount(o.Items), money(o.Total), o.Status, o.PaymentMethod)
			}
			return tw.Flush()
		})
	},
}

// assistant

var (
	describeTitle    string
	describeCategory string
	describeFeatures string
)

var describeCmd = &cobra.Command{
	Use:   "describe",
	Short: "Generate a product description with the assistant",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			r := a.svc.Assistant.Describe(cmd.Context(), describeTitle, describeCategory, describeFeatures)
			fmt.Fprintln(cmd.OutOrStdout(), r.Text)
			return nil
		})
	},
}

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Talk to the shopping assistant; without a message, read turns from stdin",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(cmd.Context(), func(a *app) error {
			if len(args) > 0 {
				r := a.svc.Assistant.Chat(cmd.Context(), nil, strings.Join(args, " "))
				fmt.Fprintln(cmd.OutOrStdout(), r.Text)
				return nil
			}
			return chatLoop(cmd, a.svc.Assistant, cmd.InOrStdin())
		})
	},
}

// chatLoop keeps the transcript in memory for the life of the command.
func chatLoop(cmd *cobra.Command, ai *assistant.Service, in io.Reader) error {
	var history []assistant.Message
	out := cmd.OutOrStdout()
	sc := bufio.NewScanner(in)
	fmt.Fprint(out, "> ")
	for sc.Scan() {
		msg := strings.TrimSpace(sc.Text())
		if msg == "" {
			fmt.Fprint(out, "> ")
			continue
		}
		r := ai.Chat(cmd.Context(), history, msg)
		fmt.Fprintln(out, r.Text)
		history = append(history,
			assistant.Message{Role: assistant.RoleUser, Text: msg},
			assistant.Message{Role: assistant.RoleModel, Text: r.Text})
		fmt.Fprint(out, "> ")
	}
	return sc.Err()
}

func init() {
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Drop the stored catalogue first")

	productsCmd.Flags().StringVarP(&productFilter.Query, "query", "q", "", "Title contains")
	productsCmd.Flags().StringVar(&productFilter.Category, "category", "", "Exact category")
	productsCmd.Flags().StringVar(&productFilter.SellerID, "seller", "", "Seller id")
	productsCmd.Flags().BoolVar(&productAsJSON, "json", false, "Print JSON")

	productsAddCmd.Flags().StringVar(&productDraft.Title, "title", "", "Title (required)")
	productsAddCmd.Flags().Float64Var(&productDraft.Price, "price", 0, "Price (required)")
	productsAddCmd.Flags().Float64Var(&productDraft.OriginalPrice, "original-price", 0, "Price before discount")
	productsAddCmd.Flags().StringVar(&productDraft.Category, "category", "", "Category (required)")
	productsAddCmd.Flags().StringVar(&productDraft.Description, "description", "", "Description")
	productsAddCmd.Flags().StringVar(&productDraft.Image, "image", "", "Image URL")
	productsAddCmd.MarkFlagRequired("title")
	productsAddCmd.MarkFlagRequired("price")
	productsAddCmd.MarkFlagRequired("category")
	productsCmd.AddCommand(productsAddCmd)
	productsCmd.AddCommand(productsDeleteCmd)

	loginCmd.Flags().StringVar(&loginRole, "role", string(domain.RoleCustomer), "customer or seller")
	loginCmd.Flags().StringVar(&loginName, "name", "", "Display name (required)")
	loginCmd.MarkFlagRequired("name")

	cartCmd.AddCommand(cartAddCmd)
	cartCmd.AddCommand(cartSetCmd)
	cartCmd.AddCommand(cartRemoveCmd)
	cartCmd.AddCommand(cartClearCmd)

	checkoutCmd.Flags().StringVar(&paymentMethod, "payment", string(domain.PaymentCashOnDelivery), "cod, bkash or nagad")

	describeCmd.Flags().StringVar(&describeTitle, "title", "", "Product title (required)")
	describeCmd.Flags().StringVar(&describeCategory, "category", "", "Category")
	describeCmd.Flags().StringVar(&describeFeatures, "features", "High quality, durable, best value", "Key features")
	describeCmd.MarkFlagRequired("title")
}

func printCart(w io.Writer, a *app) error {
	items := a.svc.Cart.Items()
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "cart is empty")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tQTY\tLINE")
	for _, it := range items {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", it.ID, it.Title, it.Quantity, money(it.LineTotal()))
	}
	fee := a.svc.Orders.ShippingFee()
	fmt.Fprintf(tw, "\t\tsubtotal\t%s\n", money(domain.Subtotal(items)))
	fmt.Fprintf(tw, "\t\tshipping\t%s\n", money(fee))
	fmt.Fprintf(tw, "\t\ttotal\t%s\n", money(domain.Total(items, fee)))
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func money(v float64) string {
	return cfg.Shop.Currency + strconv.FormatFloat(v, 'f', -1, 64)
}
