// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cli

const logo = `
888b     d888          888 888          8888888b.  888888b.
8888b   d8888          888 888          888  "Y88b 888  "88b
88888b.d88888          888 888          888    888 888  .88P
888Y88888P888  .d88b.  888 888 888  888 888    888 8888888K.
888 Y888P 888 d88""88b 888 888 888  888 888    888 888  "Y88b
888  Y8P  888 888  888 888 888 888  888 888    888 888    888
888   "   888 Y88..88P 888 888 Y88b 888 888  .d88P 888   d88P
888       888  "Y88P"  888 888  "Y88888 8888888P"  8888888P"
                                    888
                               Y8b d88P
                                "Y88P"

`
