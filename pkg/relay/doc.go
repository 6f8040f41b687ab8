// Package relay is a small MVC control plane. It discovers components in a
// namespace, instantiates controllers and services into a name-keyed
// container, resolves their autowired fields, and dispatches HTTP requests to
// controller methods through an ordered table of path patterns.
//
// Components are described once at registration time, usually by the code
// the relay generator writes into each package:
//
//	relay.Register(relay.ControllerOf[UserController](
//		relay.BasePath("/user"),
//		relay.Handle("GetUserByID", "/getUserById", "", "", "id"),
//	))
//
// Boot then runs scan, register, inject and route building in that order and
// returns a Runtime that serves requests through any WebServer adapter.
package relay
